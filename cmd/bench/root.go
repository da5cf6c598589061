package bench

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dustin/go-humanize"
	pool "github.com/jolestar/go-commons-pool/v2"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lodisdb/lodis/cmd/util"
	"github.com/lodisdb/lodis/lib/command"
	"github.com/lodisdb/lodis/lib/store"
)

var (
	// BenchCmd measures the throughput of the embedded store
	BenchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Performance testing tool for the embedded store",
		Long: `Runs the standard operation suites (set, get, incr, delete, exists,
expire, keys, mixed) against an in-process store and reports throughput
and latency percentiles per suite.`,
		RunE:    run,
		PreRunE: processBenchConfig,
	}

	benchOps       = 100000
	benchThreads   = 10
	benchKeySpread = 1000
	benchValueSize = 64
	benchSkip      = make([]string, 0)
	benchCSVPath   = ""
	benchMetrics   = false
)

func init() {
	cobra.OnInitialize(util.InitConfig)
	util.SetupStoreFlags(BenchCmd)

	// add flags
	key := "ops"
	BenchCmd.Flags().Int(key, 100000, util.WrapString("Number of operations per suite"))
	key = "threads"
	BenchCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "keys"
	BenchCmd.Flags().Int(key, 1000, util.WrapString("How many different keys to spread the operations over"))
	key = "value-size"
	BenchCmd.Flags().Int(key, 64, util.WrapString("Size of the value for write suites (in bytes)"))
	key = "skip"
	BenchCmd.Flags().String(key, "", util.WrapString("Suites to skip (comma separated - e.g. set,keys)"))
	key = "csv"
	BenchCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	BenchCmd.Flags().Bool(key, false, util.WrapString("Dump the command counters in Prometheus format after the run"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	benchOps = viper.GetInt("ops")
	benchThreads = viper.GetInt("threads")
	benchKeySpread = viper.GetInt("keys")
	benchValueSize = viper.GetInt("value-size")
	benchSkip = strings.Split(viper.GetString("skip"), ",")
	benchCSVPath = viper.GetString("csv")
	benchMetrics = viper.GetBool("metrics")

	return nil
}

// --------------------------------------------------------------------------
// Suite runner
// --------------------------------------------------------------------------

// suiteResult holds the outcome of one benchmark suite
type suiteResult struct {
	name    string
	ops     int
	elapsed time.Duration
	timer   gometrics.Timer
}

func (r *suiteResult) opsPerSec() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.ops) / r.elapsed.Seconds()
}

// bencher bundles everything a suite needs
type bencher struct {
	executor    *command.Executor
	sessionPool *pool.ObjectPool
	ctx         context.Context
	log         logger.ILogger
	results     []*suiteResult
}

func shouldSkip(name string) bool {
	for _, s := range benchSkip {
		if strings.TrimSpace(s) == name {
			return true
		}
	}
	return false
}

// runSuite spreads ops operations over the configured worker count. Every
// worker borrows a session from the pool for its whole slice of the work;
// each operation is timed individually.
func (b *bencher) runSuite(name string, ops int, fn func(sess *store.Session, i int) error) {
	if shouldSkip(name) {
		b.log.Infof("suite %s skipped", name)
		return
	}

	// clean baseline between suites, like the harness contract demands
	b.executor.Store().FlushAll()

	if err := b.prepare(name); err != nil {
		b.log.Errorf("suite %s: prepare failed: %v", name, err)
		return
	}

	timer := gometrics.NewTimer()

	var (
		wg       sync.WaitGroup
		firstErr error
		errOnce  sync.Once
	)

	start := time.Now()
	for w := 0; w < benchThreads; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			obj, err := b.sessionPool.BorrowObject(b.ctx)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			sess := obj.(*store.Session)
			defer b.sessionPool.ReturnObject(b.ctx, obj)

			for i := worker; i < ops; i += benchThreads {
				opStart := time.Now()
				if err := fn(sess, i); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
				timer.UpdateSince(opStart)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	if firstErr != nil {
		b.log.Errorf("suite %s failed: %v", name, firstErr)
		return
	}

	result := &suiteResult{name: name, ops: ops, elapsed: elapsed, timer: timer}
	b.results = append(b.results, result)
	b.log.Infof("suite %-8s %12s ops/sec", name, humanize.CommafWithDigits(result.opsPerSec(), 0))
}

// prepare populates the store for suites that operate on existing keys
func (b *bencher) prepare(name string) error {
	switch name {
	case "get", "delete", "exists", "expire", "mixed":
		sess := b.executor.Store().NewSession()
		value := benchValue()
		for i := 0; i < benchKeySpread; i++ {
			if _, err := b.executor.Execute(sess, cmdLine("SET", benchKey(i), string(value))); err != nil {
				return err
			}
		}
	case "keys":
		sess := b.executor.Store().NewSession()
		for i := 0; i < 1000; i++ {
			if _, err := b.executor.Execute(sess, cmdLine("SET", fmt.Sprintf("key_%d", i), "value")); err != nil {
				return err
			}
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func cmdLine(parts ...string) command.CmdLine {
	line := make(command.CmdLine, len(parts))
	for i, p := range parts {
		line[i] = []byte(p)
	}
	return line
}

func benchKey(i int) string {
	return "key_" + strconv.Itoa(i%benchKeySpread)
}

func benchValue() []byte {
	return bytes.Repeat([]byte("x"), benchValueSize)
}

// --------------------------------------------------------------------------
// Entry point
// --------------------------------------------------------------------------

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for the embedded Lodis store")
	fmt.Println()
	fmt.Printf("Databases:  %d\n", viper.GetInt("databases"))
	fmt.Printf("Threads:    %d\n", benchThreads)
	fmt.Printf("Operations: %s per suite\n", humanize.Comma(int64(benchOps)))
	fmt.Printf("Key spread: %s\n", humanize.Comma(int64(benchKeySpread)))
	fmt.Printf("Value size: %s\n", humanize.Bytes(uint64(benchValueSize)))
	fmt.Println()

	s, err := util.NewStore()
	if err != nil {
		return err
	}
	defer s.Close()

	executor := command.NewExecutor(s)

	// sessions are cheap but stateful (SELECT), pool them per worker so
	// suites that switch databases cannot leak a dirty session
	ctx := context.Background()
	factory := pool.NewPooledObjectFactorySimple(func(context.Context) (interface{}, error) {
		return s.NewSession(), nil
	})
	poolConfig := pool.NewDefaultPoolConfig()
	poolConfig.MaxTotal = benchThreads
	sessionPool := pool.NewObjectPool(ctx, factory, poolConfig)

	b := &bencher{
		executor:    executor,
		sessionPool: sessionPool,
		ctx:         ctx,
		log:         logger.GetLogger("bench"),
	}

	value := string(benchValue())

	b.runSuite("set", benchOps, func(sess *store.Session, i int) error {
		_, err := executor.Execute(sess, cmdLine("SET", benchKey(i), value))
		return err
	})

	b.runSuite("get", benchOps, func(sess *store.Session, i int) error {
		_, err := executor.Execute(sess, cmdLine("GET", benchKey(i)))
		return err
	})

	b.runSuite("incr", benchOps, func(sess *store.Session, i int) error {
		_, err := executor.Execute(sess, cmdLine("INCR", "counter_"+strconv.Itoa(i%16)))
		return err
	})

	b.runSuite("delete", benchOps, func(sess *store.Session, i int) error {
		_, err := executor.Execute(sess, cmdLine("DEL", benchKey(i)))
		return err
	})

	b.runSuite("exists", benchOps, func(sess *store.Session, i int) error {
		_, err := executor.Execute(sess, cmdLine("EXISTS", benchKey(i)))
		return err
	})

	b.runSuite("expire", benchOps, func(sess *store.Session, i int) error {
		_, err := executor.Execute(sess, cmdLine("EXPIRE", benchKey(i), "300"))
		return err
	})

	// KEYS scans the whole keyspace, run far fewer iterations
	keysOps := benchOps / 1000
	if keysOps < 1 {
		keysOps = 1
	}
	b.runSuite("keys", keysOps, func(sess *store.Session, i int) error {
		_, err := executor.Execute(sess, cmdLine("KEYS", "key_*"))
		return err
	})

	b.runSuite("mixed", benchOps, func(sess *store.Session, i int) error {
		var err error
		switch i % 4 {
		case 0:
			_, err = executor.Execute(sess, cmdLine("SET", benchKey(i), value))
		case 1, 2:
			_, err = executor.Execute(sess, cmdLine("GET", benchKey(i)))
		case 3:
			_, err = executor.Execute(sess, cmdLine("INCR", "counter"))
		}
		return err
	})

	printResults(b.results)

	if benchCSVPath != "" {
		if err := writeCSV(benchCSVPath, b.results); err != nil {
			return err
		}
		fmt.Printf("\nresults written to %s\n", benchCSVPath)
	}

	if benchMetrics {
		fmt.Println()
		metrics.WritePrometheus(os.Stdout, false)
	}

	return nil
}

// --------------------------------------------------------------------------
// Reporting
// --------------------------------------------------------------------------

func printResults(results []*suiteResult) {
	fmt.Println()
	fmt.Printf("%-8s %12s %14s %10s %10s %10s\n", "suite", "ops", "ops/sec", "mean", "p50", "p99")

	for _, r := range results {
		fmt.Printf("%-8s %12s %14s %10s %10s %10s\n",
			r.name,
			humanize.Comma(int64(r.ops)),
			humanize.CommafWithDigits(r.opsPerSec(), 0),
			time.Duration(r.timer.Mean()).Round(time.Nanosecond).String(),
			time.Duration(r.timer.Percentile(0.5)).Round(time.Nanosecond).String(),
			time.Duration(r.timer.Percentile(0.99)).Round(time.Nanosecond).String(),
		)
	}
}

func writeCSV(path string, results []*suiteResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"suite", "ops", "ops_per_sec", "mean_ns", "p50_ns", "p99_ns"}); err != nil {
		return err
	}

	for _, r := range results {
		record := []string{
			r.name,
			strconv.Itoa(r.ops),
			strconv.FormatFloat(r.opsPerSec(), 'f', 0, 64),
			strconv.FormatFloat(r.timer.Mean(), 'f', 0, 64),
			strconv.FormatFloat(r.timer.Percentile(0.5), 'f', 0, 64),
			strconv.FormatFloat(r.timer.Percentile(0.99), 'f', 0, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}
