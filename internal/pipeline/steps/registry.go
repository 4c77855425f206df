// Package steps defines the states of the parse pipeline, their categories, and
// the prerequisites each state requires before it may run.
package steps

import (
	"fmt"
	"sort"
)

// Step names
const (
	Detect          = "detect"
	Extract         = "extract"
	AnalyzeLayout   = "analyze_layout"
	ScoreComplexity = "score_complexity"
	SelectStrategy  = "select_strategy"
	Parse           = "parse"
	Validate        = "validate"
	VisionRetry     = "vision_retry"
	LegacyFallback  = "legacy_fallback"
	Done            = "done"
)

// Step categories
const (
	CategoryIngestion  = "ingestion"
	CategoryAnalysis   = "analysis"
	CategoryParsing    = "parsing"
	CategoryValidation = "validation"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	Detect: {
		Name:         Detect,
		Category:     CategoryIngestion,
		Dependencies: []string{},
	},
	Extract: {
		Name:         Extract,
		Category:     CategoryIngestion,
		Dependencies: []string{Detect},
	},
	AnalyzeLayout: {
		Name:         AnalyzeLayout,
		Category:     CategoryAnalysis,
		Dependencies: []string{Extract},
	},
	ScoreComplexity: {
		Name:         ScoreComplexity,
		Category:     CategoryAnalysis,
		Dependencies: []string{AnalyzeLayout},
	},
	SelectStrategy: {
		Name:         SelectStrategy,
		Category:     CategoryParsing,
		Dependencies: []string{ScoreComplexity},
	},
	Parse: {
		Name:         Parse,
		Category:     CategoryParsing,
		Dependencies: []string{SelectStrategy},
	},
	Validate: {
		Name:         Validate,
		Category:     CategoryValidation,
		Dependencies: []string{Parse},
	},
	VisionRetry: {
		Name:         VisionRetry,
		Category:     CategoryParsing,
		Dependencies: []string{Validate},
	},
	LegacyFallback: {
		Name:         LegacyFallback,
		Category:     CategoryParsing,
		Dependencies: []string{Parse},
	},
	Done: {
		Name:         Done,
		Category:     CategoryValidation,
		Dependencies: []string{Detect},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Tracker records which steps of one parse have completed.
// It is not safe for concurrent use; each parse owns its tracker.
type Tracker struct {
	completed map[string]bool
	order     []string
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{completed: make(map[string]bool)}
}

// ValidateDependencies checks if all required dependencies for a step are completed
func (t *Tracker) ValidateDependencies(stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !t.completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// Complete validates a step's dependencies and marks it completed.
// Completing a step twice is allowed and recorded once.
func (t *Tracker) Complete(stepName string) error {
	if err := t.ValidateDependencies(stepName); err != nil {
		return err
	}
	if !t.completed[stepName] {
		t.completed[stepName] = true
		t.order = append(t.order, stepName)
	}
	return nil
}

// Completed returns completed steps in the order they finished
func (t *Tracker) Completed() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// AvailableSteps returns steps that can run now (dependencies met, not yet completed), sorted by name
func (t *Tracker) AvailableSteps() []string {
	var available []string
	for stepName := range StepRegistry {
		if t.completed[stepName] {
			continue
		}
		if err := t.ValidateDependencies(stepName); err != nil {
			continue
		}
		available = append(available, stepName)
	}
	sort.Strings(available)
	return available
}
