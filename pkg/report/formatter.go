package report

// Formatter renders a Summary into a textual report.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a plain function to the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}
