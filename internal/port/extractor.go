package port

// Extractor pulls content units out of one document format.
// A unit is a page, a paragraph, or a row-join depending on the format;
// units with no text are dropped.
type Extractor interface {
	Extract(path string) ([]string, error)
}
