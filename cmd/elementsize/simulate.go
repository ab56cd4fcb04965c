package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/elementsize/internal/errors"
	"github.com/vango-dev/elementsize/pkg/hooks"
	"github.com/vango-dev/elementsize/pkg/raf"
	"github.com/vango-dev/elementsize/pkg/resize"
)

const defaultScript = `# attach to a, switch to b, then resize b
element a 100 100
element b 200 200
attach a
frame
attach b
frame
resize b 150 150
frame
`

func simulateCmd() *cobra.Command {
	var (
		file  string
		round bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a resize scenario against an in-memory document",
		Long: `Simulate renders one component using UseSize and drives it with a
script, printing the materialized size after every frame.

Script commands, one per line (# starts a comment):
  element ID W H         create an element
  child PARENT ID W H    create an element inside PARENT
  attach ID|none         hand the element to the ref (detaching first)
  detach                 call the last returned detach function
  resize ID W H          resize an element
  remove ID              remove an element from the document
  query ID|self          observe a descendant of the attached element
  frame                  flush the frame and print the size

Without --file the built-in scenario runs. Use --file=- for stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			script := io.Reader(strings.NewReader(defaultScript))
			switch file {
			case "":
			case "-":
				script = cmd.InOrStdin()
			default:
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				script = f
			}

			sim := newSimulation(cmd.OutOrStdout(), round)
			defer sim.owner.Dispose()
			return sim.run(script)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Script file (- for stdin)")
	cmd.Flags().BoolVar(&round, "round", false, "Round sizes to whole pixels")
	return cmd
}

type simulation struct {
	out      io.Writer
	sched    *raf.ManualScheduler
	doc      *resize.Document
	owner    *hooks.Owner
	cfg      hooks.SizeConfig
	elements map[string]*resize.MemElement

	ref     hooks.RefFunc
	detach  resize.DetachFunc
	size    *resize.Size
	renders int
	frames  int
}

func newSimulation(out io.Writer, round bool) *simulation {
	s := &simulation{
		out:      out,
		sched:    &raf.ManualScheduler{},
		doc:      resize.NewDocument(),
		elements: make(map[string]*resize.MemElement),
	}
	s.cfg = hooks.SizeConfig{Scheduler: s.sched, Observers: s.doc.Observers()}
	if round {
		s.cfg.Transform = resize.Round
	}
	s.owner = hooks.NewOwner(nil, hooks.WithInvalidate(func(*hooks.Owner) { s.render() }))
	s.render()
	return s
}

func (s *simulation) render() {
	s.owner.Render(func() {
		s.renders++
		s.ref, s.size = hooks.UseSize(s.owner, s.cfg)
	})
}

func (s *simulation) run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		if err := s.exec(strings.Fields(text)); err != nil {
			return errors.New("E402").
				WithDetail(fmt.Sprintf("line %d: %q", line, text)).
				Wrap(err)
		}
	}
	return scanner.Err()
}

func (s *simulation) exec(args []string) error {
	switch cmd, rest := args[0], args[1:]; cmd {
	case "element":
		id, w, h, err := parseElement(rest)
		if err != nil {
			return err
		}
		s.elements[id] = s.doc.NewElement(id, w, h)

	case "child":
		if len(rest) != 4 {
			return fmt.Errorf("usage: child PARENT ID W H")
		}
		parent, err := s.element(rest[0])
		if err != nil {
			return err
		}
		id, w, h, err := parseElement(rest[1:])
		if err != nil {
			return err
		}
		child := s.doc.NewElement(id, w, h)
		parent.Append(child)
		s.elements[id] = child

	case "attach":
		if len(rest) != 1 {
			return fmt.Errorf("usage: attach ID|none")
		}
		if s.detach != nil {
			s.detach()
			s.detach = nil
		}
		if rest[0] == "none" {
			s.detach = s.ref(nil)
			return nil
		}
		el, err := s.element(rest[0])
		if err != nil {
			return err
		}
		s.detach = s.ref(el)

	case "detach":
		if s.detach != nil {
			s.detach()
			s.detach = nil
		}

	case "resize":
		id, w, h, err := parseElement(rest)
		if err != nil {
			return err
		}
		el, err := s.element(id)
		if err != nil {
			return err
		}
		el.Resize(w, h)

	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("usage: remove ID")
		}
		el, err := s.element(rest[0])
		if err != nil {
			return err
		}
		el.Remove()

	case "query":
		if len(rest) != 1 {
			return fmt.Errorf("usage: query ID|self")
		}
		if rest[0] == "self" {
			s.cfg.Query = nil
		} else {
			id := rest[0]
			s.cfg.Query = func(el resize.Element) resize.Element {
				if m, ok := el.(*resize.MemElement); ok {
					return m.Query(id)
				}
				return nil
			}
		}
		s.render()

	case "frame":
		s.sched.Flush()
		s.frames++
		size := "none"
		if s.size != nil {
			size = s.size.String()
		}
		fmt.Fprintf(s.out, "frame %d: %s (renders=%d)\n", s.frames, size, s.renders)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (s *simulation) element(id string) (*resize.MemElement, error) {
	el, ok := s.elements[id]
	if !ok {
		return nil, fmt.Errorf("unknown element %q", id)
	}
	return el, nil
}

func parseElement(args []string) (id string, w, h float64, err error) {
	if len(args) != 3 {
		return "", 0, 0, fmt.Errorf("want ID W H, got %d arguments", len(args))
	}
	if w, err = strconv.ParseFloat(args[1], 64); err != nil {
		return "", 0, 0, err
	}
	if h, err = strconv.ParseFloat(args[2], 64); err != nil {
		return "", 0, 0, err
	}
	return args[0], w, h, nil
}
