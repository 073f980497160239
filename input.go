package lyricsmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Input produces requests. It returns io.EOF when there are no more, and an error
// wrapping ErrInput for a malformed request that should be skipped.
type Input interface {
	Next(ctx context.Context) (Request, error)
}

type InputFunc func(ctx context.Context) (Request, error)

func (f InputFunc) Next(ctx context.Context) (Request, error) {
	return f(ctx)
}

// Single is an Input of one request, such as one from the command line.
func Single(req Request) Input {
	var done bool
	return InputFunc(func(context.Context) (Request, error) {
		if done {
			return Request{}, io.EOF
		}
		done = true
		return req, nil
	})
}

// BatchInput reads "Artist - Song" lines. Blank lines and lines starting with # are ignored.
type BatchInput struct {
	sc   *bufio.Scanner
	line int
}

func NewBatchInput(r io.Reader) *BatchInput {
	return &BatchInput{sc: bufio.NewScanner(r)}
}

func (b *BatchInput) Next(ctx context.Context) (Request, error) {
	for b.sc.Scan() {
		if err := ctx.Err(); err != nil {
			return Request{}, err
		}
		b.line++
		line := strings.TrimSpace(b.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		req, err := ParseBatchLine(line)
		if err != nil {
			return Request{}, fmt.Errorf("line %d: %w", b.line, err)
		}
		return req, nil
	}
	if err := b.sc.Err(); err != nil {
		return Request{}, fmt.Errorf("read batch: %w", err)
	}
	return Request{}, io.EOF
}

// ParseBatchLine parses an "Artist - Song" line. The first " - " separates the two.
func ParseBatchLine(line string) (Request, error) {
	artist, title, ok := strings.Cut(line, " - ")
	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if !ok || artist == "" || title == "" {
		return Request{}, fmt.Errorf("%w: expected \"Artist - Song\", got %q", ErrInput, line)
	}
	return Request{Title: title, Artist: artist}, nil
}

const (
	TitlePrompt  = "Enter the song title (or type 'exit' to quit): "
	ArtistPrompt = "Enter the artist name (optional, press Enter to skip): "
)

// PromptInput asks for a title and an optional artist until the user types exit.
type PromptInput struct {
	Prompter *Prompter
}

func (p PromptInput) Next(ctx context.Context) (Request, error) {
	title, err := p.Prompter.Ask(ctx, TitlePrompt)
	if err != nil {
		return Request{}, err
	}
	if strings.EqualFold(title, "exit") {
		return Request{}, io.EOF
	}
	if title == "" {
		return Request{}, fmt.Errorf("%w: song title cannot be empty", ErrInput)
	}
	artist, err := p.Prompter.Ask(ctx, ArtistPrompt)
	if err != nil {
		return Request{}, err
	}
	return Request{Title: title, Artist: artist}, nil
}

// Prompter asks questions on Out and reads answers a line at a time from In.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer. It returns io.EOF once the input is closed
// without an answer.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(p.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes or no question. Anything but y or yes is no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" (y/n): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// AskDefault is Ask that falls back to def when the answer is empty.
func (p *Prompter) AskDefault(ctx context.Context, question, def string) (string, error) {
	answer, err := p.Ask(ctx, fmt.Sprintf("%s [%s]: ", question, def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
