// Command ytstream resolves scraped format descriptors into playable URLs
// and downloads the chosen one. The page scraping itself is out of scope:
// the command consumes a player script file and a JSON list of raw format
// descriptors produced by an external scraper.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ytget/ytstream"
	"github.com/ytget/ytstream/client"
	"github.com/ytget/ytstream/types"
)

func main() {
	var (
		flagScript     string
		flagFormats    string
		flagFilter     string
		flagQuality    string
		flagOutput     string
		flagTitle      string
		flagList       bool
		flagNoProgress bool
		flagTimeout    time.Duration
		flagRetries    int
		flagUA         string
		flagProxy      string
		flagRateLimit  string
		flagChunkSize  int64
	)

	flag.StringVar(&flagScript, "script", "", "Path to the player script the descriptors were protected with")
	flag.StringVar(&flagFormats, "formats", "", "Path to a JSON array of raw format descriptors")
	flag.StringVar(&flagFilter, "filter", "both", "Track filter: audio, video, both")
	flag.StringVar(&flagQuality, "quality", "highest", "Quality: highest, lowest, highest-audio, lowest-audio, highest-video, lowest-video")
	flag.StringVar(&flagOutput, "output", "", "Output path (file or directory). Empty derives from title + MIME")
	flag.StringVar(&flagTitle, "title", "", "Media title used when deriving the output filename")
	flag.BoolVar(&flagList, "list", false, "List resolved formats instead of downloading")
	flag.BoolVar(&flagNoProgress, "no-progress", false, "Disable progress output")
	flag.DurationVar(&flagTimeout, "http-timeout", 30*time.Second, "HTTP timeout (e.g., 30s, 1m)")
	flag.IntVar(&flagRetries, "retries", 3, "HTTP retries for transient errors")
	flag.StringVar(&flagUA, "ua", "", "Override User-Agent header")
	flag.StringVar(&flagProxy, "proxy", "", "Proxy URL (http/https/socks)")
	flag.StringVar(&flagRateLimit, "rate-limit", "", "Download rate limit (e.g., 2MiB/s, 500KiB/s)")
	flag.Int64Var(&flagChunkSize, "chunk-size", 0, "Byte-range size for ranged downloads (0 uses the default)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -formats descriptors.json [-script player.js] [flags]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	flag.Parse()
	if flagFormats == "" {
		flag.Usage()
		os.Exit(2)
	}

	raws, err := readDescriptors(flagFormats)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read descriptors: %v\n", err)
		os.Exit(1)
	}

	script := ""
	if flagScript != "" {
		body, err := os.ReadFile(flagScript)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read player script: %v\n", err)
			os.Exit(1)
		}
		script = string(body)
	}

	filter, err := parseFilter(flagFilter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	quality, err := parseQuality(flagQuality)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	cfg := client.Config{Timeout: flagTimeout, Retries: flagRetries, UserAgent: flagUA, ProxyURL: flagProxy}
	c := ytstream.New().
		WithHTTPClient(client.NewWith(cfg)).
		WithFilter(filter).
		WithQuality(quality).
		WithChunkSize(flagChunkSize)

	formats := c.ResolveFormats(script, raws)
	if flagList {
		for _, f := range formats {
			fmt.Printf("itag=%-4d %-30s %-10s video=%-5v audio=%-5v live=%v\n",
				f.Itag, f.MimeType, f.QualityLabel, f.HasVideo, f.HasAudio, f.IsLive)
		}
		return
	}

	chosen, err := c.ChooseFormat(formats)
	if err != nil {
		fmt.Fprintf(os.Stderr, "No format matched: %v\n", err)
		os.Exit(1)
	}

	if !flagNoProgress {
		c = c.WithProgress(func(p ytstream.Progress) {
			if p.TotalSize > 0 {
				_, _ = fmt.Fprintf(os.Stdout, "Downloaded %.1f%%\r", p.Percent)
			}
		})
	}
	if bps := parseRate(flagRateLimit); bps > 0 {
		c = c.WithRateLimit(bps)
	}

	if err := c.Download(context.Background(), chosen, flagTitle, flagOutput); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nSaved itag=%d\n", chosen.Itag)
}

func readDescriptors(path string) ([]types.RawFormat, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raws []types.RawFormat
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

func parseFilter(s string) (types.TrackFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audio":
		return types.FilterAudio, nil
	case "video":
		return types.FilterVideo, nil
	case "both", "":
		return types.FilterAudioVideo, nil
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

func parseQuality(s string) (types.Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "highest", "":
		return types.QualityHighest, nil
	case "lowest":
		return types.QualityLowest, nil
	case "highest-audio":
		return types.QualityHighestAudio, nil
	case "lowest-audio":
		return types.QualityLowestAudio, nil
	case "highest-video":
		return types.QualityHighestVideo, nil
	case "lowest-video":
		return types.QualityLowestVideo, nil
	}
	return 0, fmt.Errorf("unknown quality %q", s)
}

// parseRate parses strings like "2MiB/s", "500KiB/s" into bytes per second.
func parseRate(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0
	}
	mul := int64(1)
	s = strings.TrimSuffix(s, "/S")
	s = strings.TrimSpace(s)
	sfx := ""
	for _, suf := range []string{"KIB", "MIB", "GIB", "KB", "MB", "GB"} {
		if strings.HasSuffix(s, suf) {
			sfx = suf
			s = strings.TrimSuffix(s, suf)
			break
		}
	}
	s = strings.TrimSpace(s)
	var val float64
	_, err := fmt.Sscanf(s, "%f", &val)
	if err != nil || val <= 0 {
		return 0
	}
	switch sfx {
	case "KIB":
		mul = 1024
	case "MIB":
		mul = 1024 * 1024
	case "GIB":
		mul = 1024 * 1024 * 1024
	case "KB":
		mul = 1000
	case "MB":
		mul = 1000 * 1000
	case "GB":
		mul = 1000 * 1000 * 1000
	}
	return int64(val * float64(mul))
}
