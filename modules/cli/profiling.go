package cli

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/felixge/fgprof"
	"github.com/felixge/fgtrace"
	"github.com/lkarlslund/tagcamps/modules/ui"
)

var (
	embeddedprofiler  = Root.PersistentFlags().Bool("embeddedprofiler", false, "Start embedded Go profiler on localhost:6060")
	cpuprofile        = Root.PersistentFlags().Bool("cpuprofile", false, "Save CPU profile from start to end of processing in datapath")
	cpuprofiletimeout = Root.PersistentFlags().Int32("cpuprofiletimeout", 0, "CPU profiling timeout in seconds (0 means no timeout)")
	memprofile        = Root.PersistentFlags().Bool("memprofile", false, "Save memory profile at end of processing in datapath")
	memprofiletimeout = Root.PersistentFlags().Int32("memprofiletimeout", 0, "Memory profiling timeout in seconds (0 means no timeout)")
	dofgtrace         = Root.PersistentFlags().Bool("fgtrace", false, "Save CPU fgtrace start to end of processing in datapath")
	dofgprof          = Root.PersistentFlags().Bool("fgprof", false, "Save CPU fgprof start to end of processing in datapath")

	stoppers       []chan bool
	profilewriters sync.WaitGroup
)

func profileFilename(kind, ext string) string {
	return filepath.Join(*Datapath, "tagcamps-"+kind+"-"+time.Now().Format("06010215040506")+ext)
}

// runUntilStopped calls stop once the post run hook fires or after timeout seconds
func runUntilStopped(timeout int32, stop func()) {
	stopper := make(chan bool, 2)
	stoppers = append(stoppers, stopper)
	profilewriters.Add(1)

	go func() {
		<-stopper
		stop()
		profilewriters.Done()
	}()

	if timeout > 0 {
		go func() {
			<-time.After(time.Second * time.Duration(timeout))
			stopper <- true
		}()
	}
}

func startProfiling() error {
	if *embeddedprofiler {
		go func() {
			port := 6060
			for {
				ui.Info().Msgf("Starting profiling listener on port %v", port)
				err := http.ListenAndServe(fmt.Sprintf("localhost:%v", port), nil)
				if err == nil {
					break
				}
				ui.Error().Msgf("Profiling listener failed: %v, trying with new port", err)
				port++
			}
		}()
	}

	if *dofgprof {
		tracefilename := profileFilename("fgprof", ".pprof")
		tracefile, err := os.Create(tracefilename)
		if err != nil {
			return fmt.Errorf("Error creating fgprof file %v: %v", tracefilename, err)
		}
		tracestopper := fgprof.Start(tracefile, fgprof.FormatPprof)
		runUntilStopped(*cpuprofiletimeout, func() {
			if err := tracestopper(); err != nil {
				ui.Error().Msgf("Problem stopping fgprof: %v", err)
			}
			tracefile.Close()
		})
	}

	if *dofgtrace {
		trace := fgtrace.Config{Dst: fgtrace.File(profileFilename("fgtrace", ".json"))}.Trace()
		runUntilStopped(*cpuprofiletimeout, func() {
			if err := trace.Stop(); err != nil {
				ui.Error().Msgf("Problem stopping fgtrace: %v", err)
			}
		})
	}

	if *cpuprofile {
		pproffile := profileFilename("cpuprofile", ".pprof")
		f, err := os.Create(pproffile)
		if err != nil {
			return fmt.Errorf("Could not set up CPU profiling in file %v: %v", pproffile, err)
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			return err
		}
		runUntilStopped(*cpuprofiletimeout, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	if *memprofile {
		pproffile := profileFilename("memprofile", ".pprof")
		f, err := os.Create(pproffile)
		if err != nil {
			return fmt.Errorf("Could not set up memory profiling in file %v: %v", pproffile, err)
		}
		runUntilStopped(*memprofiletimeout, func() {
			pprof.WriteHeapProfile(f)
			f.Close()
		})
	}
	return nil
}

func stopProfiling() {
	for _, stopper := range stoppers {
		stopper <- true
	}
	profilewriters.Wait()
	stoppers = nil
}
