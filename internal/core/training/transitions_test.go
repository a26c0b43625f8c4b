package training

import "testing"

func TestNextStatusAfterCompletion(t *testing.T) {
	tests := []struct {
		name      string
		current   TrainingStatus
		count     int
		required  int
		want      TrainingStatus
	}{
		{name: "below requirement stays in_progress", current: StatusInProgress, count: 2, required: 3, want: StatusInProgress},
		{name: "reaching requirement promotes", current: StatusInProgress, count: 3, required: 3, want: StatusReviewReady},
		{name: "exceeding requirement promotes", current: StatusInProgress, count: 7, required: 3, want: StatusReviewReady},
		{name: "review_ready never changes here", current: StatusReviewReady, count: 10, required: 3, want: StatusReviewReady},
		{name: "certified never regresses", current: StatusCertified, count: 0, required: 3, want: StatusCertified},
		{name: "custom requirement respected", current: StatusInProgress, count: 4, required: 5, want: StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStatusAfterCompletion(tt.current, tt.count, tt.required)
			if got != tt.want {
				t.Errorf("NextStatusAfterCompletion(%q, %d, %d) = %q, want %q", tt.current, tt.count, tt.required, got, tt.want)
			}
		})
	}
}

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(); got != StatusInProgress {
		t.Errorf("InitialStatus() = %q, want in_progress", got)
	}
}

func TestGenerateTrainingID(t *testing.T) {
	if got := GenerateTrainingID(11); got != "TRAIN-012" {
		t.Errorf("GenerateTrainingID(11) = %q, want TRAIN-012", got)
	}
}
