// Package gtp is the line-oriented GTP command loop: read a line,
// dispatch on its first token, write a "= ..." or "? ..." response
// terminated by a blank line.
package gtp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"alphago9"
	"alphago9/board"
	"alphago9/sgf"
)

// commands is the list_commands response.
var commands = []string{
	"protocol_version",
	"name",
	"version",
	"list_commands",
	"boardsize",
	"komi",
	"time_settings",
	"time_left",
	"clear_board",
	"genmove",
	"play",
	"undo",
	"gogui-play_sequence",
	"showboard",
	"loadsgf",
	"quit",
}

// Server runs the GTP command loop against one Engine.
type Server struct {
	engine *alphago9.Engine
	out    *bufio.Writer
}

// New wraps engine in a GTP command loop. engine's Quick/Random/Clean
// flags are read as-is from the caller (the CLI launcher sets them from
// its own flags before Serve is called).
func New(engine *alphago9.Engine) *Server {
	return &Server{engine: engine}
}

// Serve reads GTP commands from r and writes responses to w until "quit"
// or r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	s.out = bufio.NewWriter(w)
	defer s.out.Flush()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !s.dispatch(line) {
			return nil
		}
		s.out.Flush()
	}
	return scanner.Err()
}

// dispatch handles one command line; its bool return is false on "quit".
func (s *Server) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "protocol_version":
		s.reply("2")
	case "name":
		s.reply("AlphaGo9")
	case "version":
		s.reply("1.0")
	case "list_commands":
		s.replyList(commands)
	case "boardsize":
		s.boardsize(args)
	case "komi":
		s.komi(args)
	case "time_settings":
		s.timeSettings(args)
	case "time_left":
		s.timeLeft(args)
	case "clear_board":
		s.engine.Clear()
		s.reply("")
	case "genmove":
		s.genmove(args)
	case "play":
		s.play(args)
	case "undo":
		_ = s.engine.Undo()
		s.reply("")
	case "gogui-play_sequence":
		s.playSequence(args)
	case "showboard":
		s.engine.Board.ShowBoard(os.Stderr)
		s.reply("")
	case "loadsgf":
		s.loadsgf(args)
	case "quit":
		s.reply("")
		return false
	default:
		s.errorf("unknown_command")
	}
	return true
}

func (s *Server) reply(body string) {
	fmt.Fprintf(s.out, "= %s\n\n", body)
}

func (s *Server) replyList(items []string) {
	fmt.Fprintln(s.out, "= "+strings.Join(items, "\n"))
	fmt.Fprintln(s.out)
}

func (s *Server) errorf(format string, a ...interface{}) {
	fmt.Fprintf(s.out, "? "+format+"\n\n", a...)
}

func (s *Server) boardsize(args []string) {
	n, err := argInt(args, 0)
	if err != nil || n != board.BSIZE {
		s.errorf("invalid boardsize")
		return
	}
	s.reply("")
}

func (s *Server) komi(args []string) {
	k, err := argFloat(args, 0)
	if err != nil || k != board.KOMI {
		s.errorf("invalid komi")
		return
	}
	s.reply("")
}

func (s *Server) timeSettings(args []string) {
	main, err1 := argFloat(args, 0)
	byo, err2 := argFloat(args, 1)
	if err1 != nil || err2 != nil {
		s.errorf("invalid time_settings")
		return
	}
	s.engine.SetTime(main, byo)
	s.reply("")
}

func (s *Server) timeLeft(args []string) {
	// colour seconds stones: only seconds is read.
	seconds, err := argFloat(args, 1)
	if err != nil {
		s.errorf("invalid time_left")
		return
	}
	s.engine.SetLeftTime(seconds)
	s.reply("")
}

func (s *Server) genmove(args []string) {
	move, winRate := s.engine.GenMove(0)
	s.engine.Tree.PrintRootInfo(os.Stderr)
	if winRate < 0.1 {
		s.reply("resign")
		return
	}
	_ = s.engine.Play(move, true)
	s.reply(board.Ev2str(move))
}

func (s *Server) play(args []string) {
	if len(args) < 2 {
		s.errorf("invalid play")
		return
	}
	v, err := board.Str2ev(args[1])
	if err != nil {
		s.errorf("invalid vertex")
		return
	}
	_ = s.engine.Play(v, false)
	s.reply("")
}

// playSequence plays "colour vertex colour vertex ..." pairs in order,
// ignoring colour (the Board tracks turn on its own), matching
// gogui-play_sequence.
func (s *Server) playSequence(args []string) {
	for i := 1; i < len(args); i += 2 {
		v, err := board.Str2ev(args[i])
		if err != nil {
			continue
		}
		_ = s.engine.Play(v, false)
	}
	s.reply("")
}

func (s *Server) loadsgf(args []string) {
	if len(args) < 1 {
		s.errorf("invalid loadsgf")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		s.errorf("cannot open file")
		return
	}
	maxMoves := 0
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			maxMoves = n
		}
	}
	moves, err := sgf.Load(string(data), maxMoves)
	if err != nil {
		s.errorf("cannot load file")
		return
	}
	s.engine.Clear()
	for _, mv := range moves {
		_ = s.engine.Play(mv.Vtx, false)
	}
	s.reply("")
}

func argInt(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(args[i])
}

func argFloat(args []string, i int) (float32, error) {
	if i >= len(args) {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.ParseFloat(args[i], 32)
	return float32(f), err
}
