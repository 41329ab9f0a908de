// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// File and directory names of a canonical question directory.
const (
	// MarkerFile is the question-text file whose presence marks a payload
	// directory as valid.
	MarkerFile = "question.txt"

	AnswerFile      = "correct_answer.txt"
	ExplanationFile = "explain.txt"

	QuestionFiguresDir    = "question_figures"
	ExplanationFiguresDir = "explain_figures"

	// AnswerPlaceholder fills correct_answer.txt when the source had none.
	// It distinguishes "not yet known" from a genuinely empty answer.
	AnswerPlaceholder = "?"
)

// OptionLetters lists the answer options in display order.
var OptionLetters = []string{"A", "B", "C", "D", "E"}

// RequiredFiles lists the eight text files every canonical directory holds.
var RequiredFiles = []string{
	MarkerFile,
	"option_A.txt",
	"option_B.txt",
	"option_C.txt",
	"option_D.txt",
	"option_E.txt",
	AnswerFile,
	ExplanationFile,
}

// FigureDirs lists the two figure subdirectories of a canonical directory.
var FigureDirs = []string{QuestionFiguresDir, ExplanationFiguresDir}

// OptionFile returns the file name holding the option with the given letter.
func OptionFile(letter string) string {
	return "option_" + letter + ".txt"
}

// DirName returns the canonical zero-padded folder name for a question ID.
func DirName(id int) string {
	return fmt.Sprintf("%03d", id)
}

// Question holds the contents of one canonical question directory.
type Question struct {
	// ID is the positive question number.
	ID int `json:"id" yaml:"id"`

	// Folder is the canonical directory name (e.g. "007").
	Folder string `json:"folder" yaml:"folder"`

	// Dir is the filesystem path of the canonical directory.
	Dir string `json:"-" yaml:"-"`

	Text        string            `json:"text" yaml:"text"`
	Options     map[string]string `json:"options" yaml:"options"`
	Answer      string            `json:"answer" yaml:"answer"`
	Explanation string            `json:"explanation" yaml:"explanation"`

	// QuestionFigures and ExplanationFigures hold file names in natural order.
	QuestionFigures    []string `json:"question_figures" yaml:"question_figures"`
	ExplanationFigures []string `json:"explain_figures" yaml:"explain_figures"`
}

// Option returns the text of the option with the given letter, or "".
func (q Question) Option(letter string) string {
	return q.Options[letter]
}

// AnswerKnown reports whether the answer is something other than the
// placeholder or blank.
func (q Question) AnswerKnown() bool {
	return q.Answer != "" && q.Answer != AnswerPlaceholder
}
