// Package sh provides the ishell backed interactive console. Commands
// never touch viewer state directly; they post messages into the frame
// loop and wait for the reply.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/control"
	"github.com/physlab/physview.go/pkg/viewer"
)

// Shell provides ishell backed interactive console.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Loop  *fx.Loop
	Bus   *control.Bus
}

const (
	shellKey = "$shell"
	prompt   = "physview > "

	// commandTimeout bounds the wait for a loop reply. Loads fetch over
	// the network inside the frame, so this is generous.
	commandTimeout = 2 * time.Minute
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&LoadCmd,
		&EnvCmd,
		&UploadCmd,
		&UnloadCmd,
		&PauseCmd,
		&ResumeCmd,
		&NoiseCmd,
		&KeyCmd,
		&DragCmd,
		&MoveCmd,
		&ReleaseCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other command providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell posting into loop and keying into bus.
func New(loop *fx.Loop, bus *control.Bus) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell: ishell.New(),
		Loop:  loop,
		Bus:   bus,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// DoCommand posts a message carrying the reply channel and waits for
// the result.
func DoCommand(c *ishell.Context, msg fx.Message, replyCh chan error) error {
	s := ShellFrom(c)
	s.Loop.PostMessage(msg)
	s.Loop.TriggerNext()
	select {
	case err := <-replyCh:
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println("OK")
		return nil
	case <-time.After(commandTimeout):
		c.Err(fmt.Errorf("command timeout"))
		return context.DeadlineExceeded
	}
}

// Post posts a fire-and-forget message.
func Post(c *ishell.Context, msg fx.Message) {
	s := ShellFrom(c)
	s.Loop.PostMessage(msg)
	s.Loop.TriggerNext()
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// LoadCmd loads a predefined robot.
	LoadCmd = ishell.Cmd{
		Name: "load",
		Help: "NAME",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("robot name expected"))
				return
			}
			replyCh := make(chan error, 1)
			DoCommand(c, &viewer.LoadRobotMsg{Name: c.Args[0], Reply: replyCh}, replyCh)
		},
	}

	// EnvCmd loads an environment.
	EnvCmd = ishell.Cmd{
		Name: "env",
		Help: "NAME",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("environment name expected"))
				return
			}
			replyCh := make(chan error, 1)
			DoCommand(c, &viewer.LoadEnvironmentMsg{Name: c.Args[0], Reply: replyCh}, replyCh)
		},
	}

	// UploadCmd loads a robot from a local directory.
	UploadCmd = ishell.Cmd{
		Name: "upload",
		Help: "DIR",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("directory expected"))
				return
			}
			files, err := CollectFiles(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			replyCh := make(chan error, 1)
			DoCommand(c, &viewer.LoadUploadMsg{Files: files, Reply: replyCh}, replyCh)
		},
	}

	// UnloadCmd tears the current scene down.
	UnloadCmd = ishell.Cmd{
		Name: "unload",
		Help: "",
		Func: func(c *ishell.Context) {
			replyCh := make(chan error, 1)
			DoCommand(c, &viewer.UnloadMsg{Reply: replyCh}, replyCh)
		},
	}

	// PauseCmd pauses the simulation clock.
	PauseCmd = ishell.Cmd{
		Name: "pause",
		Help: "",
		Func: func(c *ishell.Context) {
			Post(c, &viewer.PauseMsg{Paused: true})
		},
	}

	// ResumeCmd resumes the simulation clock.
	ResumeCmd = ishell.Cmd{
		Name:    "resume",
		Aliases: []string{"run"},
		Help:    "",
		Func: func(c *ishell.Context) {
			Post(c, &viewer.PauseMsg{Paused: false})
		},
	}

	// NoiseCmd reconfigures control noise.
	NoiseCmd = ishell.Cmd{
		Name: "noise",
		Help: "STD [RATE]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("noise std expected"))
				return
			}
			var msg viewer.NoiseMsg
			if _, err := fmt.Sscanf(c.Args[0], "%g", &msg.Std); err != nil {
				c.Err(err)
				return
			}
			msg.Rate = 1
			if len(c.Args) > 1 {
				if _, err := fmt.Sscanf(c.Args[1], "%g", &msg.Rate); err != nil {
					c.Err(err)
					return
				}
			}
			Post(c, &msg)
		},
	}

	// KeyCmd injects a key transition.
	KeyCmd = ishell.Cmd{
		Name: "key",
		Help: "down|up|tap CODE",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("usage: key down|up|tap CODE"))
				return
			}
			bus := ShellFrom(c).Bus
			code := c.Args[1]
			switch c.Args[0] {
			case "down":
				bus.Post(control.KeyEvent{Code: code, Down: true})
			case "up":
				bus.Post(control.KeyEvent{Code: code})
			case "tap":
				bus.Post(control.KeyEvent{Code: code, Down: true})
				bus.Post(control.KeyEvent{Code: code})
			default:
				c.Err(fmt.Errorf("usage: key down|up|tap CODE"))
			}
		},
	}

	// DragCmd starts a drag on a body.
	DragCmd = ishell.Cmd{
		Name: "drag",
		Help: "BODY X Y Z",
		Func: func(c *ishell.Context) {
			var msg viewer.DragStartMsg
			if len(c.Args) != 4 {
				c.Err(fmt.Errorf("usage: drag BODY X Y Z"))
				return
			}
			if _, err := fmt.Sscanf(c.Args[0], "%d", &msg.Body); err != nil {
				c.Err(err)
				return
			}
			if err := scanVec3(c.Args[1:], &msg.Hit.X, &msg.Hit.Y, &msg.Hit.Z); err != nil {
				c.Err(err)
				return
			}
			Post(c, &msg)
		},
	}

	// MoveCmd moves the active drag.
	MoveCmd = ishell.Cmd{
		Name: "move",
		Help: "X Y Z",
		Func: func(c *ishell.Context) {
			var msg viewer.DragMoveMsg
			if len(c.Args) != 3 {
				c.Err(fmt.Errorf("usage: move X Y Z"))
				return
			}
			if err := scanVec3(c.Args, &msg.Point.X, &msg.Point.Y, &msg.Point.Z); err != nil {
				c.Err(err)
				return
			}
			Post(c, &msg)
		},
	}

	// ReleaseCmd ends the active drag.
	ReleaseCmd = ishell.Cmd{
		Name: "release",
		Help: "",
		Func: func(c *ishell.Context) {
			Post(c, &viewer.DragEndMsg{})
		},
	}

	// StatusCmd prints the viewer status.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			replyCh := make(chan viewer.Status, 1)
			s.Loop.PostMessage(&viewer.StatusQueryMsg{Reply: replyCh})
			s.Loop.TriggerNext()
			select {
			case st := <-replyCh:
				if s.OutputJSON {
					out, err := json.Marshal(st)
					if err != nil {
						c.Err(err)
						return
					}
					c.Println(string(out))
					return
				}
				if st.Scene == "" {
					c.Println("no scene loaded")
					return
				}
				state := "running"
				if st.Paused {
					state = "paused"
				}
				c.Printf("%s: %s, t=%.3fs, dragging=%v\n", st.Scene, state, st.SimTime, st.Dragging)
			case <-time.After(time.Second):
				c.Err(fmt.Errorf("command timeout"))
			}
		},
	}
)

func scanVec3(args []string, x, y, z *float64) error {
	for i, p := range []*float64{x, y, z} {
		if _, err := fmt.Sscanf(args[i], "%g", p); err != nil {
			return err
		}
	}
	return nil
}
