// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResultStatus is the outcome of normalizing one question ID.
type ResultStatus string

const (
	StatusNormalized ResultStatus = "normalized"
	StatusSkipped    ResultStatus = "skipped"
)

// Origin identifies where a payload came from.
type Origin string

const (
	OriginNone    Origin = ""
	OriginFolder  Origin = "folder"
	OriginArchive Origin = "archive"
)

// Result records what happened to one question ID during a normalize run.
type Result struct {
	ID     int          `json:"id" yaml:"id"`
	Status ResultStatus `json:"status" yaml:"status"`

	// Origin and Source describe the payload that produced the canonical
	// directory. Empty for skipped IDs that had no source.
	Origin Origin `json:"origin,omitempty" yaml:"origin,omitempty"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Lenient is set when the payload had no marker file and was copied
	// wholesale.
	Lenient bool `json:"lenient,omitempty" yaml:"lenient,omitempty"`

	// Reason explains a skip.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// BatchReport collects per-ID results of a normalize run.
type BatchReport struct {
	First   int      `json:"first" yaml:"first"`
	Last    int      `json:"last" yaml:"last"`
	Results []Result `json:"results" yaml:"results"`

	// Missing lists IDs in [First, Last] with no canonical directory after
	// the run.
	Missing []int `json:"missing" yaml:"missing"`
}

// Normalized returns the number of IDs that produced a canonical directory.
func (r BatchReport) Normalized() int {
	return r.count(StatusNormalized)
}

// Skipped returns the number of IDs that were skipped.
func (r BatchReport) Skipped() int {
	return r.count(StatusSkipped)
}

// Complete reports whether every ID in the range has a canonical directory.
func (r BatchReport) Complete() bool {
	return len(r.Missing) == 0
}

// Lookup returns the result for id, if any.
func (r BatchReport) Lookup(id int) (Result, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return Result{}, false
}

func (r BatchReport) count(s ResultStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}
