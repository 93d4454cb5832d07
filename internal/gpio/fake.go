package gpio

// FakeStatusLine is a test double that records every Set call.
type FakeStatusLine struct {
	// Values contains every level that was set, in order.
	Values []bool

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// NewFakeStatusLine creates an unset FakeStatusLine.
func NewFakeStatusLine() *FakeStatusLine {
	return &FakeStatusLine{}
}

// Set records the level.
func (f *FakeStatusLine) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Values = append(f.Values, on)
	return nil
}

// Close marks the line as closed.
func (f *FakeStatusLine) Close() error {
	f.Closed = true
	return nil
}
