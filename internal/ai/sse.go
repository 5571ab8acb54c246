package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

type frameKind int

const (
	frameIgnorable  frameKind = iota // comment, blank or unframed line
	frameDelta                       // non-empty content fragment
	frameDone                        // [DONE] sentinel
	frameIncomplete                  // data line whose JSON did not parse
)

type frame struct {
	kind frameKind
	text string
}

// classifyLine decodes one line, with or without its trailing "\n".
func classifyLine(line string) frame {
	line = strings.TrimSuffix(line, "\r")
	if strings.HasPrefix(line, ":") || strings.TrimSpace(line) == "" {
		return frame{kind: frameIgnorable}
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return frame{kind: frameIgnorable}
	}

	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == doneSentinel {
		return frame{kind: frameDone}
	}
	if !json.Valid([]byte(payload)) {
		return frame{kind: frameIncomplete}
	}

	// Valid JSON of an unexpected shape carries no content.
	var p chunkPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil || len(p.Choices) == 0 {
		return frame{kind: frameIgnorable}
	}
	if content := p.Choices[0].Delta.Content; content != "" {
		return frame{kind: frameDelta, text: content}
	}
	return frame{kind: frameIgnorable}
}

type parseState int

const (
	awaitingLine parseState = iota
	haveCandidateLine
)

// frameParser turns decoded text into frames. buf holds complete lines
// not yet consumed plus at most one trailing partial line.
type frameParser struct {
	buf       []byte
	candidate []byte
	state     parseState
	stalled   bool // a candidate failed to parse; wait for the next write
	done      bool // sentinel seen
}

func (p *frameParser) write(text []byte) {
	p.buf = append(p.buf, text...)
	p.stalled = false
}

// next returns the next deliverable frame. ok is false when the buffered
// data is exhausted, the parser is stalled, or the sentinel was seen.
func (p *frameParser) next() (f frame, ok bool) {
	for !p.done && !p.stalled {
		switch p.state {
		case awaitingLine:
			i := bytes.IndexByte(p.buf, '\n')
			if i < 0 {
				return frame{}, false
			}
			p.candidate = append(p.candidate[:0], p.buf[:i]...)
			p.buf = p.buf[i+1:]
			p.state = haveCandidateLine

		case haveCandidateLine:
			f = classifyLine(string(p.candidate))
			if f.kind == frameIncomplete {
				p.rewind()
				return frame{}, false
			}
			p.state = awaitingLine
			switch f.kind {
			case frameDone:
				p.done = true
				return f, true
			case frameDelta:
				return f, true
			}
		}
	}
	return frame{}, false
}

// rewind puts the candidate line and its terminator back at the front
// of the buffer, byte for byte.
func (p *frameParser) rewind() {
	restored := make([]byte, 0, len(p.candidate)+1+len(p.buf))
	restored = append(restored, p.candidate...)
	restored = append(restored, '\n')
	p.buf = append(restored, p.buf...)
	p.candidate = p.candidate[:0]
	p.state = awaitingLine
	p.stalled = true
}

// flush classifies whatever remains once the source is exhausted. A
// trailing line without a terminator still counts. Unparseable frames
// are dropped.
func (p *frameParser) flush() []frame {
	if p.done || len(p.buf) == 0 {
		return nil
	}
	rest := string(p.buf)
	p.buf = nil

	var out []frame
	for _, line := range strings.Split(rest, "\n") {
		f := classifyLine(line)
		switch f.kind {
		case frameDone:
			p.done = true
			return out
		case frameDelta:
			out = append(out, f)
		}
	}
	return out
}

// readFrames pulls chunks from r until the sentinel or end of input and
// hands every content fragment to emit as soon as it is decoded. Bytes of
// a character split across reads are carried to the next read; everything
// before them is parsed right away.
func readFrames(ctx context.Context, r io.Reader, readSize int, emit func(string)) error {
	dec := unicode.UTF8.NewDecoder()
	chunk := make([]byte, readSize)
	// Each invalid byte may widen to a 3-byte U+FFFD.
	text := make([]byte, 3*(readSize+utf8.UTFMax))
	var carry []byte

	var p frameParser
	drain := func() {
		for {
			f, ok := p.next()
			if !ok {
				return
			}
			if f.kind == frameDelta {
				emit(f.text)
			}
		}
	}

	for !p.done {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := r.Read(chunk)
		if n > 0 {
			carry = append(carry, chunk[:n]...)
			rest, derr := decodeText(dec, text, carry, false, p.write)
			if derr != nil {
				return derr
			}
			carry = append(carry[:0], rest...)
			drain()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	if !p.done && len(carry) > 0 {
		if _, err := decodeText(dec, text, carry, true, p.write); err != nil {
			return err
		}
		drain()
	}
	for _, f := range p.flush() {
		emit(f.text)
	}
	return nil
}

// decodeText runs src through t into dst, passing each decoded run to
// write. It returns the undecoded tail of src, which is non-empty only
// when src ends inside a character and atEOF is false.
func decodeText(t transform.Transformer, dst, src []byte, atEOF bool, write func([]byte)) ([]byte, error) {
	for {
		nDst, nSrc, err := t.Transform(dst, src, atEOF)
		if nDst > 0 {
			write(dst[:nDst])
		}
		src = src[nSrc:]
		switch {
		case err == nil:
			return src, nil
		case errors.Is(err, transform.ErrShortSrc):
			return src, nil
		case errors.Is(err, transform.ErrShortDst) && (nDst > 0 || nSrc > 0):
			continue
		default:
			return nil, err
		}
	}
}
