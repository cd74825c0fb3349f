package pipeline

import "time"

// Definition names a pipeline and lists its steps.
type Definition struct {
	// Name identifies the pipeline in logs and events ("detection").
	Name string

	// Title is the human readable name ("Object Detection").
	Title string

	// FailureMessage prefixes the notification of a failed run.
	FailureMessage string

	Steps []Step
}

// TotalDelay is the sum of the step delays.
func (d Definition) TotalDelay() time.Duration {
	var total time.Duration
	for _, s := range d.Steps {
		total += s.Delay
	}
	return total
}

var (
	detectionLabels = []string{
		"Loading detection model...",
		"Preprocessing image...",
		"Running inference...",
		"Post-processing results...",
		"Filtering by confidence...",
	}
	classificationLabels = []string{
		"Loading classification model...",
		"Preprocessing image...",
		"Feature extraction...",
		"Running classification...",
		"Calculating probabilities...",
	}
)

func uniformSteps(labels []string, delay time.Duration) []Step {
	steps := make([]Step, len(labels))
	for i, l := range labels {
		steps[i] = Step{Label: l, Delay: delay}
	}
	return steps
}

// Detection is the five step object detection pipeline.
func Detection(stepDelay time.Duration) Definition {
	return Definition{
		Name:           "detection",
		Title:          "Object Detection",
		FailureMessage: "Detection failed",
		Steps:          uniformSteps(detectionLabels, stepDelay),
	}
}

// Classification is the five step image classification pipeline.
func Classification(stepDelay time.Duration) Definition {
	return Definition{
		Name:           "classification",
		Title:          "Image Classification",
		FailureMessage: "Classification failed",
		Steps:          uniformSteps(classificationLabels, stepDelay),
	}
}
