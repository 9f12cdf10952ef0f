package ui

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gookit/color"
	"github.com/pterm/pterm"
)

type progressBar struct {
	ID                  uuid.UUID
	Title               string
	titleStyle          *pterm.Style
	barStyle            *pterm.Style
	current, total      atomic.Int64
	RoundingFactor      time.Duration
	Started, Lastupdate time.Time
	mutex               sync.Mutex
	barCharacter        string
	lastCharacter       string
	barFiller           string

	done atomic.Bool
}

var (
	pbLock       sync.Mutex
	progressbars = map[*progressBar]struct{}{}
)

// ActiveProgressBars returns the bars that have not been finished yet
func ActiveProgressBars() []*progressBar {
	pbLock.Lock()
	defer pbLock.Unlock()
	pbs := make([]*progressBar, 0, len(progressbars))
	for pb := range progressbars {
		pbs = append(pbs, pb)
	}
	return pbs
}

func ProgressBar(title string, max int64) *progressBar {
	if max <= 0 {
		max = 1 // avoid division by zero
	}

	id, _ := uuid.NewV7()
	pb := &progressBar{
		ID:             id,
		Title:          title,
		RoundingFactor: time.Second,
		barCharacter:   "█",
		lastCharacter:  "█",
		barFiller:      " ",
		titleStyle:     pterm.NewStyle(pterm.FgLightWhite),
		barStyle:       pterm.NewStyle(pterm.FgGreen),
		Started:        time.Now(),
	}
	pb.total.Store(max)

	pbLock.Lock()
	progressbars[pb] = struct{}{}
	pbLock.Unlock()

	return pb
}

func (pb *progressBar) Current() int64 {
	return pb.current.Load()
}

func (pb *progressBar) Total() int64 {
	return pb.total.Load()
}

func (pb *progressBar) Add(i int) {
	pb.current.Add(int64(i))
	pb.update(false)
}

func (pb *progressBar) Set(cur, max int) {
	if max > 0 {
		pb.total.Store(int64(max))
	}
	pb.current.Store(int64(cur))
	pb.update(false)
}

func (pb *progressBar) Finish() {
	if pb.done.Swap(true) {
		return
	}
	pbLock.Lock()
	delete(progressbars, pb)
	pbLock.Unlock()

	pb.update(true)
	Debug().Msgf("%v finished in %v", pb.Title, time.Since(pb.Started).Round(time.Millisecond))
}

func (pb *progressBar) update(force bool) {
	pb.mutex.Lock()
	if !force && time.Since(pb.Lastupdate) < time.Second {
		pb.mutex.Unlock()
		return
	}
	pb.Lastupdate = time.Now()
	pb.mutex.Unlock()

	outputMutex.Lock()
	defer outputMutex.Unlock()

	clearneeded = true

	current, total := pb.current.Load(), pb.total.Load()
	percent := float64(current) * 100 / float64(total)
	if percent > 100 {
		percent = 100
	}

	decoratorCount := pterm.Gray("[") + pterm.LightWhite(current) + pterm.Gray("/") + pterm.LightWhite(total) + pterm.Gray("]")
	decoratorPercent := color.RGB(pterm.NewRGB(255, 0, 0).Fade(0, float32(total), float32(current), pterm.NewRGB(0, 255, 0)).GetValues()).
		Sprint(fmt.Sprintf("%.2f%%", percent))

	before := pb.titleStyle.Sprint(pb.Title) + " " + decoratorCount + " "
	after := " " + decoratorPercent + " | " + time.Since(pb.Started).Round(pb.RoundingFactor).String()

	barMaxLength := pterm.GetTerminalWidth() - len(pterm.RemoveColorFromString(before)) - len(pterm.RemoveColorFromString(after)) - 1
	if barMaxLength < 1 {
		barMaxLength = 1
	}
	barCurrentLength := int(math.Round(percent * float64(barMaxLength) / 100))

	var bar string
	if barCurrentLength > 0 {
		bar = pb.barStyle.Sprint(strings.Repeat(pb.barCharacter, barCurrentLength-1) + pb.lastCharacter)
	}
	if barMaxLength-barCurrentLength > 0 {
		bar += strings.Repeat(pb.barFiller, barMaxLength-barCurrentLength)
	}

	pterm.Fprinto(console, before+bar+after)
}
