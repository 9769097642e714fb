//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("CLASSXP_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:8080"
}

// TestSessionFlowIntegration walks a full Sunday against a running server:
// create a class, enroll students, tick the session checklist, commit it and
// read the resulting reports back.
func TestSessionFlowIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	className := fmt.Sprintf("Integration %d", time.Now().UnixNano())
	dateKey := time.Now().Format("2006-01-02")

	var class struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/classes", map[string]any{
		"name":  className,
		"color": "#3366ff",
	}, &class)
	if class.ID == "" {
		t.Fatalf("unexpected create class response: %+v", class)
	}

	var ana, bruno struct {
		ID string `json:"id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/classes/"+class.ID+"/students", map[string]any{
		"name":      "Ana",
		"birthDate": "2015-06-15",
	}, &ana)
	doJSON(t, client, http.MethodPost, base+"/api/classes/"+class.ID+"/students", map[string]any{
		"name": "Bruno",
	}, &bruno)
	if ana.ID == "" || bruno.ID == "" {
		t.Fatalf("student creation failed: ana=%+v bruno=%+v", ana, bruno)
	}

	// Ana attends and recites the verse; Bruno stays home
	toggle := func(studentID, criterion string, value bool) {
		doJSON(t, client, http.MethodPost, base+"/api/records/toggle", map[string]any{
			"classId":   class.ID,
			"dateKey":   dateKey,
			"studentId": studentID,
			"criterion": criterion,
			"value":     value,
		}, nil)
	}
	toggle(ana.ID, "presence", true)
	toggle(ana.ID, "verse", true)

	doJSON(t, client, http.MethodPut, base+"/api/lessons", map[string]any{
		"classId": class.ID,
		"dateKey": dateKey,
		"lesson":  map[string]any{"status": "held"},
	}, nil)

	var commit struct {
		AwardedXP int `json:"awardedXp"`
		Students  int `json:"students"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/sessions/commit", map[string]any{
		"classId": class.ID,
		"dateKey": dateKey,
	}, &commit)
	if commit.AwardedXP != 50 || commit.Students != 1 {
		t.Fatalf("commit = %+v, want 50 XP over 1 student", commit)
	}

	var period struct {
		Sessions       int     `json:"sessions"`
		AttendanceRate float64 `json:"attendanceRate"`
	}
	doJSON(t, client, http.MethodGet,
		fmt.Sprintf("%s/api/reports/period?classId=%s&start=%s&end=%s", base, class.ID, dateKey, dateKey),
		nil, &period)
	if period.Sessions != 1 || period.AttendanceRate != 50 {
		t.Fatalf("period = %+v, want 1 session at 50%% attendance", period)
	}

	var xp struct {
		TotalXP int `json:"totalXp"`
		Level   int `json:"level"`
	}
	doJSON(t, client, http.MethodGet,
		fmt.Sprintf("%s/api/reports/xp?classId=%s&studentId=%s", base, class.ID, ana.ID),
		nil, &xp)
	if xp.TotalXP != 50 || xp.Level != 0 {
		t.Fatalf("xp report = %+v, want 50 XP at level 0", xp)
	}

	// clean up so reruns do not pile classes up
	doJSON(t, client, http.MethodDelete, base+"/api/classes/"+class.ID, nil, nil)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
