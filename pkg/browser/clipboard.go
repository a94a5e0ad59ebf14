package browser

type ClipboardMode int

const (
	ClipboardCopy ClipboardMode = iota
	ClipboardMove
)

type Clipboard struct {
	Paths []string
	Mode  ClipboardMode
}

func (c *Clipboard) Yank(paths ...string) {
	c.Paths, c.Mode = paths, ClipboardCopy
}

func (c *Clipboard) Cut(paths ...string) {
	c.Paths, c.Mode = paths, ClipboardMove
}

func (c *Clipboard) Clear() {
	c.Paths = nil
	c.Mode = ClipboardCopy
}

func (c *Clipboard) Empty() bool {
	return len(c.Paths) == 0
}
