package services

import "context"

// SuggestClient calls the external model that drafts intervention
// suggestions. Implementations are opaque to the core; nothing they return is
// ever written to the record store.
type SuggestClient interface {
	Suggest(ctx context.Context, studentName string, attendanceRate, homeworkRate float64) ([]string, error)
}

type SuggestService struct {
	client SuggestClient
}

func NewSuggestService(client SuggestClient) *SuggestService {
	return &SuggestService{client: client}
}

// Suggestions asks the external collaborator for intervention ideas for one
// student. Rates are fractions in [0,1]. Collaborator failures surface as a
// bad-gateway error and leave the data model untouched.
func (s *SuggestService) Suggestions(ctx context.Context, studentName string, attendanceRate, homeworkRate float64) ([]string, error) {
	if studentName == "" {
		return nil, NewInvalidError("studentName required")
	}
	if attendanceRate < 0 || attendanceRate > 1 || homeworkRate < 0 || homeworkRate > 1 {
		return nil, NewInvalidError("rates must be within [0,1]")
	}
	if s.client == nil {
		return nil, NewBadGatewayError("suggestion service is not configured")
	}
	out, err := s.client.Suggest(ctx, studentName, attendanceRate, homeworkRate)
	if err != nil {
		return nil, NewBadGatewayError("suggestion service unavailable")
	}
	return out, nil
}
