package source

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/zostay/pantomime/message"
	"github.com/zostay/pantomime/message/header"
	"github.com/zostay/pantomime/message/header/field"
	"github.com/zostay/pantomime/message/header/param"
	"github.com/zostay/pantomime/mimepath"
)

var attachmentLine = regexp.MustCompile(`(?i)^content-disposition:\s*attachment`)

// positions is what is known about one part. Each position is valid only once
// its flag is set. A position of -1 means it could not be found.
type positions struct {
	partStart, headerEnd, bodyStart, bodyEnd int64

	havePartStart, haveHeaderEnd, haveBodyStart, haveBodyEnd bool

	boundary    string
	hasBoundary bool
	attachment  bool
}

// boundaryLine is a line found to be a boundary.
type boundaryLine struct {
	*Line
	end bool
}

// Stream is a positional index over a message in a ByteSource. It implements
// message.Source.
//
// Every question is answered by scanning lines forward from a known position
// and the answers are kept, so later questions about the same part are
// cheap. A malformed message is never an error: missing boundaries, missing
// end boundaries, reused boundaries and boundaries that are prefixes of other
// boundaries are all tolerated. Only a failure to read the ByteSource is an
// error, returned as a *message.IOError.
//
// A Stream is meant for one reader at a time.
type Stream struct {
	src    ByteSource
	mu     sync.Mutex
	ra     lockedReaderAt
	opts   *options
	logger *slog.Logger

	length int64
	meta   map[string]*positions
	lines  *lineReader
	freed  bool
}

// New returns a Stream indexing the message in src.
func New(src ByteSource, opts ...Option) *Stream {
	o := applyOptions(opts)
	s := &Stream{
		src:    src,
		opts:   o,
		logger: o.logger,
	}
	s.ra = lockedReaderAt{mu: &s.mu, r: src}
	s.reset()
	return s
}

// reset forgets everything learned about the bytes.
func (s *Stream) reset() {
	s.length = -1
	s.meta = map[string]*positions{}
	s.lines = nil
}

func (s *Stream) datum(p mimepath.Path) *positions {
	key := p.String()
	d, ok := s.meta[key]
	if !ok {
		d = &positions{}
		s.meta[key] = d
	}
	return d
}

// Length returns the total number of bytes in the message.
func (s *Stream) Length() (int64, error) {
	if s.freed {
		return 0, ErrFreed
	}

	if s.length >= 0 {
		return s.length, nil
	}

	n, err := s.src.Size()
	if err != nil {
		return 0, ioError("size", -1, err)
	}

	s.length = n
	return n, nil
}

// seek positions the line reader.
func (s *Stream) seek(pos int64) error {
	n, err := s.Length()
	if err != nil {
		return err
	}

	s.lines = newLineReader(s.ra, pos, n)
	return nil
}

// line reads the next line from where the last seek left off.
func (s *Stream) line() (*Line, error) {
	if s.lines == nil {
		if err := s.seek(0); err != nil {
			return nil, err
		}
	}
	return s.lines.next()
}

// readAt reads the bytes in [start, end).
func (s *Stream) readAt(start, end int64) (string, error) {
	if end <= start {
		return "", nil
	}

	buf := make([]byte, end-start)
	n, err := s.ra.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return "", err
	}

	return string(buf[:n]), nil
}

// isAllDashes is true for a boundary made of nothing but dashes, including
// the empty boundary.
func isAllDashes(b string) bool {
	return strings.Trim(b, "-") == ""
}

// nextBoundary reads forward to the next line that is a boundary line for b
// and returns it, or nil if there is none before the end of the stream.
func (s *Stream) nextBoundary(b string) (*boundaryLine, error) {
	for {
		l, err := s.line()
		if err != nil || l == nil {
			return nil, err
		}

		if bl := matchBoundary(l, b); bl != nil {
			return bl, nil
		}
	}
}

// matchBoundary checks whether a line is a boundary line for b.
//
// A boundary made of dashes, or an empty one, must match the whole line:
// b+"--" for a boundary and b+"----" for an end boundary.
//
// Otherwise, b must be preceded on the line only by dashes, and by at least
// one dash unless b starts with a dash itself. Following b, after trimming
// space, there may be nothing, which is a boundary, or a run of dashes,
// which is an end boundary. Anything after a run of dashes is ignored.
// Anything else following b means this is not a boundary line, which keeps a
// boundary from matching a longer boundary it is a prefix of.
func matchBoundary(l *Line, b string) *boundaryLine {
	if isAllDashes(b) {
		switch l.Text {
		case b + "--":
			return &boundaryLine{Line: l}
		case b + "----":
			return &boundaryLine{Line: l, end: true}
		}
		return nil
	}

	begin := strings.Index(l.Text, b)
	if begin < 0 {
		return nil
	}

	if begin == 0 && !strings.HasPrefix(b, "-") {
		return nil
	}

	if strings.Trim(l.Text[:begin], "-") != "" {
		return nil
	}

	after := strings.TrimSpace(l.Text[begin+len(b):])
	dashes := len(after) - len(strings.TrimLeft(after, "-"))
	if dashes < len(after) && dashes == 0 {
		return nil
	}

	return &boundaryLine{Line: l, end: dashes > 0}
}

// consecutive is true when the second boundary line starts where the first
// one ends, so that the two count as one.
func consecutive(prev, next *boundaryLine) bool {
	return prev != nil && prev.EOL() >= next.Pos
}

// readHeaders reads the header lines of a part, recording where the header
// ends, the boundary and whether it is an attachment.
func (s *Stream) readHeaders(p mimepath.Path) ([]*Line, error) {
	start, err := s.PartStart(p)
	if err != nil {
		return nil, err
	}

	d := s.datum(p)
	if start < 0 {
		d.headerEnd, d.haveHeaderEnd = -1, true
		return nil, nil
	}

	if err := s.seek(start); err != nil {
		return nil, err
	}

	var (
		lines       []*Line
		prev        = &Line{}
		headerStart = &Line{}
		end         = start
	)

	for {
		l, err := s.line()
		if err != nil {
			return nil, err
		}
		if l == nil {
			break
		}
		end = l.EOL()

		if l.Text == "" && (l.Ending == "\r\n" || l.Ending == "\n") && prev.Ending != "\r" {
			break
		}

		if !d.hasBoundary && isBoundaryDefinition(l, headerStart) {
			s.setBoundary(p, d, l)
		}

		if attachmentLine.MatchString(l.Text) {
			d.attachment = true
		}

		lines = append(lines, l)
		prev = l

		if l.Text != "" && l.Text[0] != ' ' && l.Text[0] != '\t' {
			headerStart = l
		}
	}

	if !d.haveHeaderEnd {
		d.headerEnd, d.haveHeaderEnd = end, true
	}

	return lines, nil
}

// isBoundaryDefinition is true when the line sets the boundary parameter of
// the Content-Type, either on the first line of that field or on one of its
// continuation lines.
func isBoundaryDefinition(l, headerStart *Line) bool {
	current := strings.ReplaceAll(strings.ToLower(l.Text), " ", "")
	if !strings.Contains(current, "boundary=") {
		return false
	}

	return strings.HasPrefix(current, "content-type") ||
		strings.HasPrefix(strings.ToLower(headerStart.Text), "content-type")
}

// setBoundary records the boundary found on a header line. Only the first
// boundary declared counts.
func (s *Stream) setBoundary(p mimepath.Path, d *positions, l *Line) {
	i := strings.Index(strings.ToLower(l.Text), "boundary")
	if i < 0 {
		return
	}

	b, ok := field.Tokenize("placeholder; " + l.Text[i:])[param.Boundary]
	if !ok {
		return
	}

	d.boundary = strings.ReplaceAll(b, `"`, "")
	d.hasBoundary = true

	s.logger.Debug("found boundary", "path", p.String(), "boundary", d.boundary)
}

// HeaderEnd returns the offset just after the blank line ending the header
// of the part at p, or the end of the stream if there is no blank line.
func (s *Stream) HeaderEnd(p mimepath.Path) (int64, error) {
	if s.freed {
		return 0, ErrFreed
	}

	if d := s.datum(p); d.haveHeaderEnd {
		return d.headerEnd, nil
	}

	if _, err := s.readHeaders(p); err != nil {
		return 0, err
	}

	return s.datum(p).headerEnd, nil
}

// Boundary returns the boundary declared by the part at p. The second value
// is false if the part declares none.
func (s *Stream) Boundary(p mimepath.Path) (string, bool, error) {
	if _, err := s.HeaderEnd(p); err != nil {
		return "", false, err
	}

	d := s.datum(p)
	return d.boundary, d.hasBoundary, nil
}

// IsAttachment returns true if the header of the part at p has an attachment
// disposition.
func (s *Stream) IsAttachment(p mimepath.Path) (bool, error) {
	if _, err := s.HeaderEnd(p); err != nil {
		return false, err
	}
	return s.datum(p).attachment, nil
}

// startBoundary finds the boundary line that the part at p follows in its
// parent, or nil if there is none. When several boundary lines follow one
// another with nothing between, the part follows the last of them.
func (s *Stream) startBoundary(p mimepath.Path) (*boundaryLine, error) {
	parent, ok := p.Parent()
	if !ok {
		return nil, nil
	}

	b, has, err := s.Boundary(parent)
	if err != nil || !has {
		return nil, err
	}

	headerEnd, err := s.HeaderEnd(parent)
	if err != nil || headerEnd < 0 {
		return nil, err
	}

	if err := s.seek(headerEnd); err != nil {
		return nil, err
	}

	bl, err := s.nthBoundary(b, p.Last())
	if err != nil || bl == nil {
		return nil, err
	}

	for {
		next, err := s.nextBoundary(b)
		if err != nil {
			return nil, err
		}
		if next == nil || !consecutive(bl, next) {
			return bl, nil
		}
		bl = next
	}
}

// PartStart returns the offset where the part at p starts, just after the
// boundary line before it. The root starts at 0. It returns -1 if there is
// no such part.
func (s *Stream) PartStart(p mimepath.Path) (int64, error) {
	if s.freed {
		return 0, ErrFreed
	}

	d := s.datum(p)
	if d.havePartStart {
		return d.partStart, nil
	}

	start := int64(-1)
	if p.IsRoot() {
		start = 0
	} else {
		bl, err := s.startBoundary(p)
		if err != nil {
			return 0, err
		}
		if bl != nil {
			start = bl.EOL()
		}
	}

	d = s.datum(p)
	d.partStart, d.havePartStart = start, true

	s.logger.Debug("found part start", "path", p.String(), "offset", start)

	return start, nil
}

// BodyStart returns the offset where the body of the part at p starts. For a
// multipart this is just after its first boundary line, if it has one.
func (s *Stream) BodyStart(p mimepath.Path) (int64, error) {
	if s.freed {
		return 0, ErrFreed
	}

	if d := s.datum(p); d.haveBodyStart {
		return d.bodyStart, nil
	}

	headerEnd, err := s.HeaderEnd(p)
	if err != nil {
		return 0, err
	}

	start := headerEnd
	b, has, err := s.Boundary(p)
	if err != nil {
		return 0, err
	}

	if has && headerEnd >= 0 {
		if err := s.seek(headerEnd); err != nil {
			return 0, err
		}

		bl, err := s.nextBoundary(b)
		if err != nil {
			return 0, err
		}
		if bl != nil {
			start = bl.EOL()
		}
	}

	d := s.datum(p)
	d.bodyStart, d.haveBodyStart = start, true

	return start, nil
}

// nthBoundary returns the boundary line at index n counting from the current
// position, where consecutive boundary lines count once.
func (s *Stream) nthBoundary(b string, n int) (*boundaryLine, error) {
	var prev, bl *boundaryLine
	for i := 0; i <= n; i++ {
		var err error
		if bl, err = s.nextBoundary(b); err != nil || bl == nil {
			return nil, err
		}

		if consecutive(prev, bl) {
			i--
		}

		prev = bl
	}

	return bl, nil
}

// contentBefore returns the offset where content ends before a boundary
// line. The line break leading into the boundary is not content, nor is one
// blank line before that.
func (s *Stream) contentBefore(bl *boundaryLine) (int64, error) {
	from := bl.Pos - 4
	if from < 0 {
		from = 0
	}

	before, err := s.readAt(from, bl.Pos)
	if err != nil {
		return 0, err
	}

	for _, brk := range []string{"\r\n\r\n", "\n\n", "\r\n", "\n", "\r"} {
		if strings.HasSuffix(before, brk) {
			return bl.Pos - int64(len(brk)), nil
		}
	}

	return bl.Pos, nil
}

// BodyEnd returns the offset just after the last byte of the body of the
// part at p. This is the end of the stream for the root part and for any
// part whose closing boundary is missing.
func (s *Stream) BodyEnd(p mimepath.Path) (int64, error) {
	if s.freed {
		return 0, ErrFreed
	}

	if d := s.datum(p); d.haveBodyEnd {
		return d.bodyEnd, nil
	}

	end, err := s.Length()
	if err != nil {
		return 0, err
	}

	parent, ok := p.Parent()
	if ok {
		b, has, err := s.Boundary(parent)
		if err != nil {
			return 0, err
		}
		if !has {
			return end, nil
		}

		headerEnd, err := s.HeaderEnd(parent)
		if err != nil {
			return 0, err
		}

		if err := s.seek(headerEnd); err != nil {
			return 0, err
		}

		bl, err := s.nthBoundary(b, p.Last()+1)
		if err != nil {
			return 0, err
		}

		if bl != nil {
			if end, err = s.contentBefore(bl); err != nil {
				return 0, err
			}
		}

		if end, err = s.clampToUncle(p, parent, end); err != nil {
			return 0, err
		}
	}

	d := s.datum(p)
	d.bodyEnd, d.haveBodyEnd = end, true

	s.logger.Debug("found body end", "path", p.String(), "offset", end)

	return end, nil
}

// clampToUncle handles nested multiparts that reuse the boundary of an
// outer multipart. If the part after the parent starts before the computed
// end, the body ends before that part instead.
func (s *Stream) clampToUncle(p, parent mimepath.Path, end int64) (int64, error) {
	ubl, err := s.startBoundary(parent.NextSibling())
	if err != nil || ubl == nil {
		return end, err
	}

	bodyStart, err := s.BodyStart(p)
	if err != nil {
		return 0, err
	}

	ante := ubl.Pos - 1
	if ante < 0 || ante < bodyStart || ubl.Pos >= end {
		return end, nil
	}

	clamped, err := s.contentBefore(ubl)
	if err != nil {
		return 0, err
	}

	if clamped < bodyStart {
		clamped = bodyStart
	}

	return clamped, nil
}

// SubPartCount returns the number of sub-parts of the multipart at p, or 0
// if it is not multipart.
//
// The count tolerates a missing end boundary, an end boundary used in place
// of a boundary and the reverse. Consecutive boundary lines count once.
func (s *Stream) SubPartCount(p mimepath.Path) (int, error) {
	b, has, err := s.Boundary(p)
	if err != nil || !has {
		return 0, err
	}

	headerEnd, err := s.HeaderEnd(p)
	if err != nil {
		return 0, err
	}

	if err := s.seek(headerEnd); err != nil {
		return 0, err
	}

	var (
		count, ends int
		prev        *boundaryLine
	)

	for {
		bl, err := s.nextBoundary(b)
		if err != nil {
			return 0, err
		}
		if bl == nil {
			break
		}

		count++
		if consecutive(prev, bl) {
			count--
		}

		prev = bl
		if bl.end {
			ends++
		}
	}

	length, err := s.Length()
	if err != nil {
		return 0, err
	}

	switch {
	case isAllDashes(b):
		count -= ends
	case count > 1:
		if ends > 0 || prev.EOL() >= length {
			count--
		}
	case count == 1 && ends == 1:
		count = 0
	}

	return count, nil
}

// Preamble returns the bytes between the header of the multipart at p and
// its first boundary line. The line break leading into the boundary is not
// part of it, nor is one blank line before that.
func (s *Stream) Preamble(p mimepath.Path) (string, error) {
	b, has, err := s.Boundary(p)
	if err != nil || !has {
		return "", err
	}

	headerEnd, err := s.HeaderEnd(p)
	if err != nil {
		return "", err
	}

	if err := s.seek(headerEnd); err != nil {
		return "", err
	}

	first, err := s.nextBoundary(b)
	if err != nil || first == nil {
		return "", err
	}

	end, err := s.contentBefore(first)
	if err != nil {
		return "", err
	}

	return s.readAt(headerEnd, end)
}

// Epilogue returns the bytes between the last boundary line of the
// multipart at p and the end of its body. One blank line just after the
// boundary line and the final line break are not part of it.
func (s *Stream) Epilogue(p mimepath.Path) (string, error) {
	b, has, err := s.Boundary(p)
	if err != nil || !has {
		return "", err
	}

	bodyEnd, err := s.BodyEnd(p)
	if err != nil {
		return "", err
	}

	headerEnd, err := s.HeaderEnd(p)
	if err != nil {
		return "", err
	}

	if err := s.seek(headerEnd); err != nil {
		return "", err
	}

	var last *boundaryLine
	for {
		bl, err := s.nextBoundary(b)
		if err != nil {
			return "", err
		}
		if bl == nil {
			break
		}
		last = bl
	}

	if last == nil {
		return "", nil
	}

	epi, err := s.readAt(last.EOL(), bodyEnd)
	if err != nil {
		return "", err
	}

	return trimBreaks(epi), nil
}

var lineBreaks = []string{"\r\n", "\n", "\r"}

// trimBreaks removes one line break from the front and one from the back.
func trimBreaks(text string) string {
	for _, brk := range lineBreaks {
		if strings.HasPrefix(text, brk) {
			text = text[len(brk):]
			break
		}
	}

	for _, brk := range lineBreaks {
		if strings.HasSuffix(text, brk) {
			return text[:len(text)-len(brk)]
		}
	}

	return text
}

// Body returns a reader over the transfer-encoded body of the part at p.
// Each reader keeps its own position, so several may be open at once.
func (s *Stream) Body(p mimepath.Path) (io.ReadCloser, error) {
	start, err := s.BodyStart(p)
	if err != nil {
		return nil, err
	}

	end, err := s.BodyEnd(p)
	if err != nil {
		return nil, err
	}

	if start < 0 || end < start {
		end = start
	}

	return io.NopCloser(io.NewSectionReader(s.ra, start, end-start)), nil
}

// TransferEncodedBodySize returns the length of the body of the part at p,
// or -1 if the part cannot be found.
func (s *Stream) TransferEncodedBodySize(p mimepath.Path) (int64, error) {
	start, err := s.BodyStart(p)
	if err != nil {
		return 0, err
	}

	end, err := s.BodyEnd(p)
	if err != nil {
		return 0, err
	}

	return span(start, end), nil
}

// span is the length of [start, end). It is -1 when either end is unknown
// and 0 when end comes before start.
func span(start, end int64) int64 {
	switch {
	case start < 0 || end < 0:
		return -1
	case end < start:
		return 0
	}
	return end - start
}

// TransferEncodedSize returns the length of the part at p, header included,
// or -1 if the part cannot be found.
func (s *Stream) TransferEncodedSize(p mimepath.Path) (int64, error) {
	if p.IsRoot() {
		return s.Length()
	}

	start, err := s.PartStart(p)
	if err != nil {
		return 0, err
	}

	end, err := s.BodyEnd(p)
	if err != nil {
		return 0, err
	}

	return span(start, end), nil
}

// Part returns the part at p, bound to this stream.
func (s *Stream) Part(p mimepath.Path) (*message.Part, error) {
	start, err := s.PartStart(p)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, message.ErrIndexOutOfRange
	}

	lines, err := s.readHeaders(p)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(lines))
	endings := make([]header.Break, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
		endings[i] = header.Break(l.Ending)
	}

	d := s.datum(p)
	return message.NewSourcedPart(s, p, header.Parse(texts, endings),
		d.boundary, d.hasBoundary, message.WithLogger(s.logger)), nil
}

// Load returns the message at the root of the stream.
func (s *Stream) Load() (*message.Message, error) {
	root, err := s.Part(mimepath.Root())
	if err != nil {
		return nil, err
	}
	return &message.Message{Part: root}, nil
}

// Free closes the ByteSource. Every later operation returns ErrFreed.
func (s *Stream) Free() error {
	if s.freed {
		return nil
	}

	s.freed = true
	s.reset()

	return s.src.Close()
}

// Save replaces the message with the bytes read from r and forgets
// everything known about the old bytes. Parts loaded before are no longer
// valid.
func (s *Stream) Save(r io.Reader) error {
	if s.freed {
		return ErrFreed
	}

	var err error
	switch sv, ok := s.src.(saver); {
	case s.opts.saveFunc != nil:
		err = s.opts.saveFunc(r)
		if w, ok := s.src.(*window); ok && err == nil {
			w.reset()
		}
	case ok:
		err = sv.Save(r)
	default:
		return ErrReadOnly
	}

	if err != nil {
		return ioError("save", -1, err)
	}

	s.reset()

	return nil
}

var _ message.Source = (*Stream)(nil)
