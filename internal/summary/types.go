package summary

// Options bounds the summary. All sizes are in bytes of rendered text.
type Options struct {
	MaxChars     int // hard cap on Summary.Text
	SnippetChars int // per-sample content cap
	LayoutDepth  int // directory levels shown in the layout outline
	MaxChildren  int // children listed per directory before "… k more"
	MaxSamples   int
	PatternFiles int // files read per extension for code patterns
	TopItems     int // items listed per entry-point category, dependency ecosystem and pattern kind
}

// DefaultOptions returns the defaults used by the analyze command.
func DefaultOptions() Options {
	return Options{
		MaxChars:     60_000,
		SnippetChars: 4_000,
		LayoutDepth:  2,
		MaxChildren:  20,
		MaxSamples:   12,
		PatternFiles: 25,
		TopItems:     15,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxChars <= 0 {
		o.MaxChars = d.MaxChars
	}
	if o.SnippetChars <= 0 {
		o.SnippetChars = d.SnippetChars
	}
	if o.LayoutDepth <= 0 {
		o.LayoutDepth = d.LayoutDepth
	}
	if o.MaxChildren <= 0 {
		o.MaxChildren = d.MaxChildren
	}
	if o.MaxSamples < 0 {
		o.MaxSamples = 0
	}
	if o.PatternFiles <= 0 {
		o.PatternFiles = d.PatternFiles
	}
	if o.TopItems <= 0 {
		o.TopItems = d.TopItems
	}
	return o
}

// ExtCount is one row of the extension histogram.
type ExtCount struct {
	Ext   string `json:"ext"`
	Count int    `json:"count"`
}

// EntryPointGroup lists guessed entry points for one category.
type EntryPointGroup struct {
	Category string   `json:"category"`
	Paths    []string `json:"paths"`
}

// DepCount is a dependency and how often it was seen.
type DepCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DependencyGroup holds the dependencies of one ecosystem.
type DependencyGroup struct {
	Ecosystem string     `json:"ecosystem"`
	Deps      []DepCount `json:"deps"`
}

// LanguagePatterns are names extracted from files of one extension.
type LanguagePatterns struct {
	Ext        string   `json:"ext"`
	Files      int      `json:"files"`
	Imports    []string `json:"imports,omitempty"`
	Exports    []string `json:"exports,omitempty"`
	Components []string `json:"components,omitempty"`
	Classes    []string `json:"classes,omitempty"`
	Functions  []string `json:"functions,omitempty"`
}

func (p LanguagePatterns) empty() bool {
	return len(p.Imports)+len(p.Exports)+len(p.Components)+len(p.Classes)+len(p.Functions) == 0
}

// Sample is a file whose content is included verbatim.
type Sample struct {
	Path      string `json:"path"`
	Rule      string `json:"rule"`
	Kind      string `json:"kind"`
	Content   string `json:"-"`
	Truncated bool   `json:"truncated"`
}

// Summary is the structured result of Summarize. Text is the prompt
// context handed to the model.
type Summary struct {
	Layout       string             `json:"layout"`
	Histogram    []ExtCount         `json:"histogram"`
	EntryPoints  []EntryPointGroup  `json:"entry_points,omitempty"`
	Dependencies []DependencyGroup  `json:"dependencies,omitempty"`
	Patterns     []LanguagePatterns `json:"patterns,omitempty"`
	Samples      []Sample           `json:"samples,omitempty"`
	Notes        []string           `json:"notes,omitempty"`
	Text         string             `json:"-"`
	Truncated    bool               `json:"truncated"`
	Fingerprint  uint64             `json:"fingerprint"`
}
