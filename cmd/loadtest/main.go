package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

type result struct {
	d    time.Duration
	err  error
	code int
}

func main() {
	var (
		baseURL     = flag.String("base-url", "http://localhost:8080", "API base URL")
		rps         = flag.Int("rps", 100, "webhook requests per second")
		duration    = flag.Duration("duration", 30*time.Second, "test duration (0 to skip traffic)")
		concurrency = flag.Int("concurrency", 50, "number of worker goroutines")
		numbers     = flag.Int64("numbers", 1000, "number of distinct phone numbers to rotate through")
		stopRatio   = flag.Float64("stop-ratio", 0.2, "fraction of inbound events with a STOP body (0..1)")
		timeout     = flag.Duration("timeout", 3*time.Second, "HTTP client timeout")

		seedOnly        = flag.Bool("seed-only", false, "run seed phase only, then exit")
		seedSubscribers = flag.Int64("seed-subscribers", 0, "if >0, pre-insert this many subscribers before traffic")
		seedDBDSN       = flag.String("seed-db-dsn", "", "MySQL DSN for seeding (optional). If empty, built from DB_* env vars.")

		broadcast      = flag.Bool("broadcast", false, "fire one /send-alert after the traffic phase")
		broadcastToken = flag.String("broadcast-token", "", "bearer token for /send-alert")
	)
	flag.Parse()

	if *numbers <= 0 {
		panic("invalid args: numbers must be > 0")
	}
	if !*seedOnly && *duration > 0 && (*rps <= 0 || *concurrency <= 0) {
		panic("invalid args")
	}

	endpoint := *baseURL + "/twilio-webhook"
	client := &http.Client{Timeout: *timeout}

	if *seedSubscribers > 0 {
		dsn := *seedDBDSN
		if dsn == "" {
			dsn = buildDSNFromEnv()
		}
		fmt.Printf("seeding subscribers (db): n=%d\n", *seedSubscribers)
		if err := seedSubscribersDB(context.Background(), dsn, *seedSubscribers); err != nil {
			panic(fmt.Sprintf("seed subscribers failed: %v", err))
		}
		fmt.Println("seeding subscribers: done")
	}

	if *seedOnly {
		return
	}

	if *duration > 0 {
		runTraffic(endpoint, client, *rps, *duration, *concurrency, *numbers, *stopRatio)
	}

	if *broadcast {
		fireBroadcast(*baseURL, client, *broadcastToken)
	}
}

func runTraffic(endpoint string, client *http.Client, rps int, duration time.Duration, concurrency int, numbers int64, stopRatio float64) {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	// token bucket by ticker
	tokens := make(chan struct{}, rps)
	ticker := time.NewTicker(time.Second / time.Duration(rps))
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				close(tokens)
				return
			case <-ticker.C:
				select {
				case tokens <- struct{}{}:
				default:
					// channel full: drop token (backpressure)
				}
			}
		}
	}()

	results := make(chan result, rps)
	var sent, ok, httpErr, bad uint64

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
			for range tokens {
				form := url.Values{}
				form.Set("From", loadtestNumber(rng.Int63()%numbers))
				if rng.Float64() < stopRatio {
					form.Set("Body", "STOP")
				} else {
					form.Set("Body", "JOIN")
				}

				start := time.Now()
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

				resp, err := client.Do(req)
				d := time.Since(start)
				atomic.AddUint64(&sent, 1)
				if err != nil {
					atomic.AddUint64(&httpErr, 1)
					results <- result{d: d, err: err}
					continue
				}
				_, _ = io.ReadAll(resp.Body)
				_ = resp.Body.Close()

				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					atomic.AddUint64(&ok, 1)
				} else {
					atomic.AddUint64(&bad, 1)
				}
				results <- result{d: d, code: resp.StatusCode}
			}
		}(i)
	}

	var durations []time.Duration
	done := make(chan struct{})
	go func() {
		for r := range results {
			durations = append(durations, r.d)
		}
		close(done)
	}()

	wg.Wait()
	close(results)
	<-done

	fmt.Printf("sent=%d ok=%d http_err=%d bad_status=%d\n", sent, ok, httpErr, bad)
	printPercentiles(durations)
}

func fireBroadcast(baseURL string, client *http.Client, token string) {
	body, _ := json.Marshal(map[string]string{"message": "loadtest broadcast"})
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/send-alert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("broadcast error: %v\n", err)
		return
	}
	respBody, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	fmt.Printf("broadcast status=%d took=%s body=%s\n", resp.StatusCode, time.Since(start), respBody)
}

func printPercentiles(durations []time.Duration) {
	if len(durations) == 0 {
		return
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	pct := func(p float64) time.Duration {
		idx := int(p * float64(len(durations)-1))
		return durations[idx]
	}
	fmt.Printf("latency p50=%s p95=%s p99=%s max=%s\n",
		pct(0.50), pct(0.95), pct(0.99), durations[len(durations)-1])
}

func loadtestNumber(i int64) string {
	return fmt.Sprintf("+1999%07d", i)
}

func seedSubscribersDB(ctx context.Context, dsn string, n int64) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	const batch = 500
	now := time.Now().UTC().Format(time.RFC3339)
	for start := int64(0); start < n; start += batch {
		end := start + batch
		if end > n {
			end = n
		}
		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*2)
		for i := start; i < end; i++ {
			values = append(values, "(?, ?)")
			args = append(args, loadtestNumber(i), now)
		}
		q := "INSERT IGNORE INTO subscribers (phone_number, subscribed_at) VALUES " + strings.Join(values, ",")
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func buildDSNFromEnv() string {
	user := envDefault("DB_USER_NAME", "relay_user")
	pass := envDefault("DB_PASSWORD", "relay_pass")
	host := envDefault("DB_HOST", "localhost")
	port := envDefault("DB_PORT", "3306")
	name := envDefault("DB_NAME", "sms_relay")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, port, name)
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
