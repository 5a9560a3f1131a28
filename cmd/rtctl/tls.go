package main

import (
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/tls"
)

var (
	demoThreads int
)

func init() {
	tlsCmd := &cobra.Command{
		Use:   "tls",
		Short: "Thread-local storage tools",
	}

	demo := newTLSDemoCmd()
	demo.Flags().IntVar(&demoThreads, "threads", 4, "Number of OS threads to run")
	tlsCmd.AddCommand(demo)

	rootCmd.AddCommand(tlsCmd)
}

func newTLSDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Show per-thread copies of a thread-local template",
		Long: `The demo command installs a template with a counter (default 5) and a
label, then has each worker, pinned to its own OS thread, add its index to
the counter and set errno. Every worker sees its own copy, starting from
the defaults.

Example:
  rtctl tls demo --threads 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTLSDemo()
		},
	}
	return cmd
}

// ThreadReport is what one worker observed in its block.
type ThreadReport struct {
	Worker  int   `json:"worker"`
	Thread  int   `json:"thread"`
	Initial int32 `json:"initial"`
	Counter int32 `json:"counter"`
	Errno   int   `json:"errno"`
}

func runTLSDemo() error {
	if demoThreads <= 0 {
		return errors.Newf("invalid thread count %d", demoThreads)
	}
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	h, err := heap.New(opts.Grower, opts.Heap)
	if err != nil {
		return err
	}
	defer h.Close()

	m, err := tls.NewManager(h, tls.OSIdentity{})
	if err != nil {
		return err
	}
	defer m.Close()

	layout := tls.NewLayout()
	counter := layout.Int32("counter", 5)
	layout.Bytes("label", []byte("rtkit\x00"), 8)
	tmpl, err := layout.Template()
	if err != nil {
		return err
	}
	if err := m.InstallTemplate(tmpl); err != nil {
		return err
	}

	reports := make([]ThreadReport, demoThreads)
	errs := make([]error, demoThreads)

	// Workers hold their threads until all have run, so no two share one.
	var ran, wg sync.WaitGroup
	ran.Add(demoThreads)
	for i := 0; i < demoThreads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			reports[i], errs[i] = demoWorker(m, counter, i)
			ran.Done()
			ran.Wait()
			if errs[i] == nil {
				errs[i] = m.Exit()
			}
		}(i)
	}
	wg.Wait()

	var joined error
	for _, e := range errs {
		joined = errors.CombineErrors(joined, e)
	}
	if joined != nil {
		return joined
	}

	if jsonOut {
		return printJSON(reports)
	}
	printInfo("Template: %d bytes, align %d\n", tmpl.Size(), tmpl.Align())
	for _, r := range reports {
		printInfo("  worker %d (thread %d): counter %d -> %d, errno %d\n",
			r.Worker, r.Thread, r.Initial, r.Counter, r.Errno)
	}
	return nil
}

// demoWorker runs on a locked OS thread.
func demoWorker(m *tls.Manager, counter, i int) (ThreadReport, error) {
	b, err := m.Current()
	if err != nil {
		return ThreadReport{}, errors.Wrapf(err, "worker %d", i)
	}
	initial, err := b.Int32(counter)
	if err != nil {
		return ThreadReport{}, err
	}
	if err := b.SetInt32(counter, initial+int32(i)); err != nil {
		return ThreadReport{}, err
	}
	b.SetErrno(i)
	got, err := b.Int32(counter)
	if err != nil {
		return ThreadReport{}, err
	}
	return ThreadReport{Worker: i, Thread: b.ThreadID(), Initial: initial, Counter: got, Errno: b.Errno()}, nil
}
