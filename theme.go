package playground

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme. A negative index means no color.
type Theme struct {
	Prompt  int // Prompt echo
	Content int // Streamed content
	Source  int // Supporting references
	Error   int // Error messages
	Success int // Completion indicators
	Muted   int // Status bar, placeholders
	Accent  int // Headings, links, spinner
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Prompt:  4,
		Content: -1,
		Source:  6,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
	}
}
