package types

import "slices"

// NormalizeConfig holds settings for the normalize stage.
type NormalizeConfig struct {
	// SourceRoot contains one folder per question (e.g. "007/" or "7/").
	SourceRoot string `json:"source_root" yaml:"source_root" mapstructure:"source_root"`

	// ArchivesRoot contains "<ID>.zip" and "<ID>.rar" archives.
	ArchivesRoot string `json:"archives_root" yaml:"archives_root" mapstructure:"archives_root"`

	// OutputRoot receives the canonical "<ID:03d>/" directories.
	OutputRoot string `json:"output_root" yaml:"output_root" mapstructure:"output_root"`

	// ScratchDir is where archives are extracted. Empty means a temporary
	// directory under the system temp dir.
	ScratchDir string `json:"scratch_dir,omitempty" yaml:"scratch_dir,omitempty" mapstructure:"scratch_dir"`

	// First and Last bound the declared ID range, inclusive.
	First int `json:"first" yaml:"first" mapstructure:"first"`
	Last  int `json:"last" yaml:"last" mapstructure:"last"`

	// RequiredFiles lists the text files every canonical directory must hold.
	RequiredFiles []string `json:"required_files" yaml:"required_files" mapstructure:"required_files"`

	// Strict turns a payload without any marker file into a skip instead of
	// the permissive copy-everything fallback.
	Strict bool `json:"strict" yaml:"strict" mapstructure:"strict"`

	// UnarBin is the external RAR extraction tool.
	UnarBin string `json:"unar_bin" yaml:"unar_bin" mapstructure:"unar_bin"`
}

// IDs returns the declared range as a slice.
func (c NormalizeConfig) IDs() []int {
	if c.Last < c.First {
		return nil
	}
	ids := make([]int, 0, c.Last-c.First+1)
	for id := c.First; id <= c.Last; id++ {
		ids = append(ids, id)
	}
	return ids
}

// InRange reports whether id falls in [First, Last].
func (c NormalizeConfig) InRange(id int) bool {
	return id >= c.First && id <= c.Last
}

// DeckStyle selects the flashcard markdown dialect.
type DeckStyle string

const (
	DeckMd2anki    DeckStyle = "md2anki"
	DeckMdankideck DeckStyle = "mdankideck"
)

// DeckConfig holds settings for the flashcard exporter.
type DeckConfig struct {
	Style DeckStyle `json:"style" yaml:"style" mapstructure:"style"`

	// Title is the deck heading written as the first "# " line.
	Title string `json:"title" yaml:"title" mapstructure:"title"`

	// OutputDir receives the markdown file and its media/ folder.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// FileName is the markdown file name inside OutputDir.
	FileName string `json:"file_name" yaml:"file_name" mapstructure:"file_name"`

	// Build runs the external deck builder after writing the markdown.
	Build bool `json:"build" yaml:"build" mapstructure:"build"`

	// BuilderBin overrides the builder binary; defaults to the style name.
	BuilderBin string `json:"builder_bin,omitempty" yaml:"builder_bin,omitempty" mapstructure:"builder_bin"`
}

// BookConfig holds settings for the mdBook exporter.
type BookConfig struct {
	Title       string `json:"title" yaml:"title" mapstructure:"title"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
	Language    string `json:"language" yaml:"language" mapstructure:"language"`
	OutputDir   string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// DocsConfig holds settings for the mkdocs exporter.
type DocsConfig struct {
	SiteName  string `json:"site_name" yaml:"site_name" mapstructure:"site_name"`
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// SheetConfig holds settings for the spreadsheet exporter.
type SheetConfig struct {
	OutputFile string `json:"output_file" yaml:"output_file" mapstructure:"output_file"`
	SheetName  string `json:"sheet_name" yaml:"sheet_name" mapstructure:"sheet_name"`

	// MaxColumnWidth caps the auto-sized column width in characters.
	MaxColumnWidth int `json:"max_column_width" yaml:"max_column_width" mapstructure:"max_column_width"`
}

// CatalogConfig holds settings for the SQLite question catalog.
type CatalogConfig struct {
	// CatalogDir contains questions.db and export.yaml.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir" mapstructure:"catalog_dir"`

	// MaxResults is the default search limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	JSON  bool   `json:"json" yaml:"json" mapstructure:"json"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
	Deck      DeckConfig      `json:"deck" yaml:"deck" mapstructure:"deck"`
	Book      BookConfig      `json:"book" yaml:"book" mapstructure:"book"`
	Docs      DocsConfig      `json:"docs" yaml:"docs" mapstructure:"docs"`
	Sheet     SheetConfig     `json:"sheet" yaml:"sheet" mapstructure:"sheet"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultPipelineConfig returns the settings used when no config file or
// flag overrides them.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Normalize: NormalizeConfig{
			SourceRoot:    ".",
			ArchivesRoot:  "zips",
			OutputRoot:    "normalized_questions",
			First:         1,
			Last:          120,
			RequiredFiles: slices.Clone(RequiredFiles),
			UnarBin:       "unar",
		},
		Deck: DeckConfig{
			Style:     DeckMd2anki,
			Title:     "Questions",
			OutputDir: "anki_markdown",
			FileName:  "anki_deck.md",
		},
		Book: BookConfig{
			Title:       "Normalized Questions Collection",
			Description: "A collection of questions organized as an mdBook",
			Language:    "zh-TW",
			OutputDir:   "mdbook",
		},
		Docs: DocsConfig{
			SiteName:  "Questions",
			OutputDir: "mkdocs",
		},
		Sheet: SheetConfig{
			OutputFile:     "questions_sheet.xlsx",
			SheetName:      "Questions",
			MaxColumnWidth: 50,
		},
		Catalog: CatalogConfig{
			CatalogDir: "catalog",
			MaxResults: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
