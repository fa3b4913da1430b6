package domain

type Outcome string

const (
	OutcomeUploaded  Outcome = "uploaded"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

type Reason string

const (
	ReasonNone          Reason = ""
	ReasonDuplicate     Reason = "duplicate"
	ReasonLimitExceeded Reason = "limit-exceeded"
	ReasonInvalid       Reason = "invalid"
	ReasonBackend       Reason = "backend"
)

// AttachOutcome is the per-item result of a bulk attach.
type AttachOutcome struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason,omitempty"`
}

// AttachResult keeps one outcome per input record, in input order.
type AttachResult struct {
	Items []AttachOutcome `json:"items"`
}

func (r AttachResult) filter(keep func(AttachOutcome) bool) []string {
	out := []string{}
	for _, it := range r.Items {
		if keep(it) {
			out = append(out, it.Name)
		}
	}
	return out
}

func (r AttachResult) Uploaded() []string {
	return r.filter(func(o AttachOutcome) bool { return o.Outcome == OutcomeUploaded })
}

// NotUploaded lists every name that was not registered, duplicates included.
func (r AttachResult) NotUploaded() []string {
	return r.filter(func(o AttachOutcome) bool { return o.Outcome != OutcomeUploaded })
}

func (r AttachResult) Duplicates() []string {
	return r.filter(func(o AttachOutcome) bool { return o.Outcome == OutcomeDuplicate })
}

func (r AttachResult) Failed() []string {
	return r.filter(func(o AttachOutcome) bool { return o.Outcome == OutcomeFailed })
}
