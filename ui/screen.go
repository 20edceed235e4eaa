// Package ui renders transfer scenes on a terminal and turns key presses into confirmations.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"rtcfix/transfer"
)

var sceneText = map[transfer.Scene][]string{
	transfer.SceneBeginPrompt: {
		"The clock program on your Ruby/Sapphire Game Pak will be updated.",
		"",
		"Press Enter to begin.",
	},
	transfer.SceneConnectPrompt: {
		"Connect both systems with the link cable.",
		"",
		"YES: press Enter.",
		"NO: turn off the power and try again.",
	},
	transfer.ScenePowerOffOrConnectLogo: {
		"Turn on the other system while holding START and SELECT,",
		"then check that the logo appears on its screen.",
	},
	transfer.SceneConnectConfirm: {
		"Peer detected. Waiting for the link to settle...",
	},
	transfer.SceneTransmitting: {
		"Transmitting. Please wait.",
		"",
		"Do not turn off the power or unplug the link cable.",
	},
	transfer.SceneFollowInstructions: {
		"Please follow the instructions on the other system's screen.",
		"",
		"Press Enter when done.",
	},
	transfer.SceneTransmissionFailed: {
		"Transmission failure.",
		"",
		"Press Enter to try again.",
	},
}

const title = "RTC Reset"

var (
	styleTitle = tcell.StyleDefault.Bold(true)
	styleText  = tcell.StyleDefault
	styleAlert = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Screen implements engine.Presenter and engine.Input on a terminal.
type Screen struct {
	s tcell.Screen

	presses   atomic.Int32
	stopChan  chan struct{}
	once      sync.Once
	closeOnce sync.Once

	scene      transfer.Scene
	drawn      bool
	sent       int
	total      int
	lastFilled int
}

func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreenWith(s)
}

// NewScreenWith takes over an uninitialized tcell screen.
func NewScreenWith(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.DisableMouse()
	u := &Screen{
		s:        s,
		stopChan: make(chan struct{}),
	}
	go u.eventLoop()
	return u, nil
}

// Close restores the terminal. It is safe to call more than once.
func (u *Screen) Close() {
	u.closeOnce.Do(func() {
		u.RequestStop()
		u.s.Fini()
	})
}

// Stopped is closed once the user asks to quit.
func (u *Screen) Stopped() <-chan struct{} {
	return u.stopChan
}

func (u *Screen) RequestStop() {
	u.once.Do(func() {
		close(u.stopChan)
		_ = u.s.PostEvent(tcell.NewEventInterrupt(nil))
	})
}

// Confirmed consumes one pending press.
func (u *Screen) Confirmed() bool {
	for {
		n := u.presses.Load()
		if n == 0 {
			return false
		}
		if u.presses.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

func (u *Screen) Present(scene transfer.Scene) {
	if u.drawn && scene == u.scene {
		return
	}
	u.scene = scene
	u.drawn = true
	u.draw()
}

func (u *Screen) PresentProgress(sent, total int) {
	u.sent, u.total = sent, total
	if filled := u.filled(); filled != u.lastFilled || !u.drawn {
		u.lastFilled = filled
		u.draw()
	}
}

const barWidth = 40

func (u *Screen) filled() int {
	if u.total == 0 {
		return 0
	}
	return u.sent * barWidth / u.total
}

func putStr(s tcell.Screen, x, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	for i, r := range []rune(str) {
		if x+i >= w {
			break
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}

func (u *Screen) draw() {
	s := u.s
	s.Clear()
	w, _ := s.Size()

	putStr(s, 0, 0, strings.Repeat("═", w), styleTitle)
	putStr(s, (w-len(title))/2, 0, title, styleTitle)

	y := 2
	for _, line := range sceneText[u.scene] {
		style := styleText
		if strings.HasPrefix(line, "Do not") || strings.HasPrefix(line, "Transmission failure") {
			style = styleAlert
		}
		putStr(s, 1, y, line, style)
		y++
	}

	if u.scene == transfer.SceneTransmitting && u.total > 0 {
		y++
		filled := u.filled()
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		putStr(s, 1, y, fmt.Sprintf("%s %5d/%d", bar, u.sent, u.total), styleText)
	}

	s.Show()
}

func (u *Screen) eventLoop() {
	for {
		select {
		case <-u.stopChan:
			return
		default:
		}
		ev := u.s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEnter:
				u.presses.Add(1)
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'a' || ev.Rune() == 'A' || ev.Rune() == ' '):
				u.presses.Add(1)
			case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyEscape:
				u.RequestStop()
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
				u.RequestStop()
			}
		case *tcell.EventResize:
			u.s.Sync()
		case *tcell.EventInterrupt:
			return
		case nil:
			return
		}
	}
}
