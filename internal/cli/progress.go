package cli

import (
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

const spinnerTick = 100 * time.Millisecond

type stopFunc func()

// startSpinner shows an indeterminate spinner on stderr for long-running
// steps like extraction and transcription. The returned stop function is
// safe to call more than once; a disabled spinner is a no-op.
func startSpinner(enabled bool, description string) stopFunc {
	if !enabled {
		return func() {}
	}

	bar := newSpinnerBar(description)

	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		tick := time.NewTicker(spinnerTick)
		defer tick.Stop()

		for {
			select {
			case <-quit:
				_ = bar.Finish()
				return
			case <-tick.C:
				_ = bar.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

func newSpinnerBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(11),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionThrottle(spinnerTick),
		progressbar.OptionClearOnFinish(),
	)
}
