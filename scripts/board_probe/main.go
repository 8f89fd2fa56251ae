package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

type boardView struct {
	ActiveEventID  int64 `json:"active_event_id"`
	NoEvents       bool  `json:"no_events"`
	CurrentProfile *struct {
		ID            int64  `json:"id"`
		Advertisement bool   `json:"advertisement"`
		Content       string `json:"content"`
	} `json:"current_profile"`
}

type observation struct {
	At        time.Time
	ProfileID int64
	Ad        bool
	Locked    bool
	Status    int
	Duration  time.Duration
	Err       error
}

func main() {
	var (
		base     string
		roomID   int64
		interval time.Duration
		samples  int
		timeout  time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "Board API base URL")
	flag.Int64Var(&roomID, "room", 1, "Room ID to probe")
	flag.DurationVar(&interval, "interval", 5*time.Second, "Delay between samples")
	flag.IntVar(&samples, "samples", 24, "Number of samples to collect")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if samples < 2 {
		log.Fatal("need at least 2 samples to observe rotation")
	}

	client := &http.Client{Timeout: timeout}
	url := fmt.Sprintf("%s/api/v1/rooms/%d/board", strings.TrimRight(base, "/"), roomID)

	observations := make([]observation, 0, samples)
	for i := 0; i < samples; i++ {
		observations = append(observations, probe(client, url))
		if i < samples-1 {
			time.Sleep(interval)
		}
	}

	printReport(roomID, observations)

	for _, obs := range observations {
		if obs.Err != nil || obs.Status != http.StatusOK {
			os.Exit(1)
		}
	}
}

func probe(client *http.Client, url string) observation {
	obs := observation{At: time.Now()}
	start := time.Now()
	resp, err := client.Get(url)
	obs.Duration = time.Since(start)
	if err != nil {
		obs.Err = err
		return obs
	}
	defer resp.Body.Close()
	obs.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		obs.Err = fmt.Errorf("read body: %w", err)
		return obs
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		obs.Err = fmt.Errorf("decode envelope: %w", err)
		return obs
	}
	if len(env.Error) > 0 {
		obs.Err = fmt.Errorf("api error: %s", env.Error)
		return obs
	}
	var view boardView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		obs.Err = fmt.Errorf("decode board: %w", err)
		return obs
	}
	if view.CurrentProfile != nil {
		obs.ProfileID = view.CurrentProfile.ID
		obs.Ad = view.CurrentProfile.Advertisement
	}
	obs.Locked = view.ActiveEventID != 0
	return obs
}

func printReport(roomID int64, observations []observation) {
	fmt.Printf("Board Probe Report (room %d)\n", roomID)
	fmt.Println("============================")

	var (
		transitions int
		failures    int
		lastID      int64 = -1
	)
	for _, obs := range observations {
		if obs.Err != nil {
			failures++
			fmt.Printf("[ERROR] %s %v\n", obs.At.Format(time.TimeOnly), obs.Err)
			continue
		}
		kind := "profile"
		if obs.Ad {
			kind = "ad"
		}
		state := "rotating"
		if obs.Locked {
			state = "locked"
		}
		fmt.Printf("[%d] %s %s %s (%s)\n", obs.Status, obs.At.Format(time.TimeOnly), kind, state, obs.Duration)
		fmt.Printf("  profile=%d\n", obs.ProfileID)
		if lastID >= 0 && obs.ProfileID != lastID {
			transitions++
		}
		lastID = obs.ProfileID
	}

	fmt.Printf("Samples: %d, Transitions: %d, Failures: %d\n", len(observations), transitions, failures)
	if transitions == 0 && failures == 0 {
		fmt.Println("No transitions observed: either the board is locked or the sample window is shorter than the rotation interval.")
	}
}
