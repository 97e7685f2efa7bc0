package model

import (
	"time"

	"github.com/google/uuid"
)

// End is the successor name meaning "no further step".
const End = "END"

// Kind classifies a step by the document section it was read from.
type Kind string

const (
	KindStart         Kind = "start"
	KindActionCalls   Kind = "actionCalls"
	KindAssignments   Kind = "assignments"
	KindDecisions     Kind = "decisions"
	KindLoops         Kind = "loops"
	KindRecordCreates Kind = "recordCreates"
	KindRecordLookups Kind = "recordLookups"
	KindRecordUpdates Kind = "recordUpdates"
	KindScreens       Kind = "screens"
)

// StepKinds lists every section kind that produces a step, in the order
// they are usually found in a flow document.
var StepKinds = []Kind{
	KindActionCalls,
	KindAssignments,
	KindDecisions,
	KindLoops,
	KindRecordCreates,
	KindRecordLookups,
	KindRecordUpdates,
	KindScreens,
}

// IsStepKind reports whether k names a section that holds steps.
func IsStepKind(k Kind) bool {
	for _, sk := range StepKinds {
		if sk == k {
			return true
		}
	}
	return false
}

// Status is the activation status of a flow. Values are kept verbatim.
type Status string

const (
	StatusActive Status = "Active"
	StatusDraft  Status = "Draft"
)

// Step is one node of a FlowGraph.
type Step interface {
	Name() string
	Label() string
	Kind() Kind
	// Next returns the default successor, End when there is none.
	Next() string
	NextLabel() string
}

// Connector is a raw reference to a successor step.
type Connector struct {
	TargetReference string `yaml:"targetReference" json:"targetReference"`
}

// Target resolves the connector to a step name, End when unset.
func (c *Connector) Target() string {
	if c == nil || c.TargetReference == "" {
		return End
	}
	return c.TargetReference
}

type base struct {
	name      string
	label     string
	next      string
	nextLabel string
}

func (b base) Name() string  { return b.name }
func (b base) Label() string { return b.label }

func (b base) Next() string {
	if b.next == "" {
		return End
	}
	return b.next
}

func (b base) NextLabel() string { return b.nextLabel }

// StartStep is the synthetic entry point of a flow. It has no name.
type StartStep struct {
	base
}

// NewStartStep returns the start step pointing at next.
func NewStartStep(next string) *StartStep {
	return &StartStep{base{next: next}}
}

func (s *StartStep) Kind() Kind { return KindStart }

// BasicStep covers assignments, record operations and screens: steps with a
// single outgoing edge and no kind-specific payload.
type BasicStep struct {
	base
	kind Kind
}

// NewBasicStep returns a single-successor step of the given kind.
func NewBasicStep(kind Kind, name, label, next, nextLabel string) *BasicStep {
	return &BasicStep{base: base{name: name, label: label, next: next, nextLabel: nextLabel}, kind: kind}
}

func (s *BasicStep) Kind() Kind { return s.kind }

// ActionStep is an actionCalls step.
type ActionStep struct {
	base
	ActionType string
}

// NewActionStep returns an actionCalls step.
func NewActionStep(name, label, next, nextLabel, actionType string) *ActionStep {
	return &ActionStep{base: base{name: name, label: label, next: next, nextLabel: nextLabel}, ActionType: actionType}
}

func (s *ActionStep) Kind() Kind { return KindActionCalls }

// Rule is one labeled branch of a decision.
type Rule struct {
	Name  string
	Label string
	// Connector is kept as read from the document; use Target to resolve it.
	Connector     *Connector
	NextNodeLabel string
}

// Target returns the step the rule branches to.
func (r Rule) Target() string {
	return r.Connector.Target()
}

// DecisionStep branches on its rules; Next is the default branch.
type DecisionStep struct {
	base
	Rules []Rule
}

// NewDecisionStep returns a decisions step. next is the default branch target.
func NewDecisionStep(name, label, next, defaultLabel string, rules []Rule) *DecisionStep {
	return &DecisionStep{base: base{name: name, label: label, next: next, nextLabel: defaultLabel}, Rules: rules}
}

func (s *DecisionStep) Kind() Kind { return KindDecisions }

// LoopStep iterates over a collection. NextValue is the body entry, Next
// the step taken once the collection is exhausted.
type LoopStep struct {
	base
	NextValue string
}

// NewLoopStep returns a loops step.
func NewLoopStep(name, label, next, nextLabel, nextValue string) *LoopStep {
	return &LoopStep{base: base{name: name, label: label, next: next, nextLabel: nextLabel}, NextValue: nextValue}
}

func (s *LoopStep) Kind() Kind { return KindLoops }

// Body returns the loop body entry, End when the loop has no body.
func (s *LoopStep) Body() string {
	if s.NextValue == "" {
		return End
	}
	return s.NextValue
}

// Variable is a row of the flow's variable table.
type Variable struct {
	Name         string `yaml:"name" json:"name"`
	DataType     string `yaml:"dataType" json:"dataType"`
	IsCollection string `yaml:"isCollection" json:"isCollection"`
	IsInput      string `yaml:"isInput" json:"isInput"`
	IsOutput     string `yaml:"isOutput" json:"isOutput"`
	Description  string `yaml:"description" json:"description"`
}

// Render is a stored conversion result.
type Render struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Notation  string    `json:"notation"`
	Diagram   string    `json:"diagram"`
	StepCount int       `json:"step_count"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
