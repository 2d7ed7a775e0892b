//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"stardew-seedsearch/internal/catalog"
	"stardew-seedsearch/internal/logger"
	"stardew-seedsearch/internal/search"
	"stardew-seedsearch/internal/sink"
)

// maxLambdaSeeds bounds one invocation's work.
const maxLambdaSeeds = 2_000_000

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type scanRequest struct {
	Start uint64   `json:"start"`
	End   uint64   `json:"end"`
	Seeds []uint64 `json:"seeds"`
	TopK  int      `json:"topK"`
}

type hit struct {
	Seed  uint64 `json:"seed"`
	Score int    `json:"score"`
	Line  string `json:"line"`
}

type scanResponse struct {
	Scanned      int64 `json:"scanned"`
	Disqualified int64 `json:"disqualified"`
	GateFailed   int64 `json:"gateFailed"`
	CartFailed   int64 `json:"cartFailed"`
	HardPassed   int64 `json:"hardPassed"`
	Cancelled    bool  `json:"cancelled,omitempty"`
	TimeMs       int64 `json:"timeMs"`
	Top          []hit `json:"top"`
}

var (
	setupOnce sync.Once
	pipeline  *search.Pipeline
	format    sink.Formatter
	setupErr  error
)

// setup loads the catalog named by SEEDSEARCH_OBJECTS (and optionally
// SEEDSEARCH_FURNITURE, SEEDSEARCH_DEMANDS) once per container.
func setup() {
	cat, err := catalog.Load(os.Getenv("SEEDSEARCH_OBJECTS"), os.Getenv("SEEDSEARCH_FURNITURE"))
	if err != nil {
		setupErr = err
		return
	}
	ds := defaultDemandSet()
	if path := os.Getenv("SEEDSEARCH_DEMANDS"); path != "" {
		if ds, err = loadDemandFile(path, cat); err != nil {
			setupErr = err
			return
		}
	}
	cfg := search.DefaultConfig()
	ds.apply(&cfg)
	cfg.PartitionSize = 50_000
	cfg.Scanner = search.NoTrackedItems
	cfg.TownGate = search.TownAlways
	cfg.QiGate = search.QiAlways
	pipeline, setupErr = search.New(cat, cfg)
	format = sink.Formatter{AuxLabels: search.WeatherLabels, BonusLabels: cfg.BonusLabels()}
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	setupOnce.Do(setup)
	if setupErr != nil {
		logger.Error(setupErr, "setup failed")
		return errResp(500, "catalog unavailable")
	}

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req scanRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}

	var res search.Result
	var err error
	switch {
	case len(req.Seeds) > maxLambdaSeeds:
		return errResp(400, fmt.Sprintf("at most %d seeds per request", maxLambdaSeeds))
	case len(req.Seeds) > 0:
		res, err = pipeline.ScanList(ctx, req.Seeds)
	case req.End <= req.Start:
		return errResp(400, "end must be greater than start")
	case req.End-req.Start > maxLambdaSeeds:
		return errResp(400, fmt.Sprintf("at most %d seeds per request", maxLambdaSeeds))
	default:
		res, err = pipeline.ScanRange(ctx, req.Start, req.End)
	}
	if err != nil {
		return errResp(500, err.Error())
	}

	top := res.Top
	if req.TopK > 0 && req.TopK < len(top) {
		top = top[:req.TopK]
	}
	resp := scanResponse{
		Scanned:      res.Scanned,
		Disqualified: res.Disqualified,
		GateFailed:   res.GateFailed,
		CartFailed:   res.CartFailed,
		HardPassed:   res.HardPassed,
		Cancelled:    res.Cancelled,
		TimeMs:       res.Elapsed.Milliseconds(),
		Top:          make([]hit, 0, len(top)),
	}
	for _, c := range top {
		resp.Top = append(resp.Top, hit{Seed: c.Seed, Score: c.Score, Line: format.Line(c)})
	}
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	logger.SetJSONWriter()
	lambda.Start(handler)
}
