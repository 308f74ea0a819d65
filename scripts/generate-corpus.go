//go:build ignore

// Package main generates a synthetic JSONL corpus for benchmarking builds
// and queries.
// Usage: go run scripts/generate-corpus.go -docs 10000 -output testdata/bench.jsonl
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numDocs = flag.Int("docs", 10000, "Number of documents to generate")
	output  = flag.String("output", "testdata/bench.jsonl", "Output JSONL file")
	seed    = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Topic vocabularies keep term distributions uneven, so BM25 has real
// signal to rank on.
var topics = map[string][]string{
	"databases": {
		"transaction", "index", "query", "schema", "replication", "shard",
		"commit", "rollback", "btree", "vacuum", "snapshot", "durability",
	},
	"networking": {
		"packet", "socket", "latency", "throughput", "routing", "firewall",
		"handshake", "congestion", "gateway", "subnet", "protocol", "retry",
	},
	"cooking": {
		"simmer", "braise", "saute", "marinade", "broth", "seasoning",
		"caramelize", "knead", "proof", "glaze", "reduction", "garnish",
	},
	"astronomy": {
		"galaxy", "nebula", "orbit", "telescope", "supernova", "parallax",
		"spectrum", "redshift", "pulsar", "eclipse", "asteroid", "transit",
	},
}

var connectives = []string{
	"the", "a", "with", "over", "during", "after", "between", "using",
	"without", "against", "through", "despite",
}

type document struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	topicNames := make([]string, 0, len(topics))
	for name := range topics {
		topicNames = append(topicNames, name)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := 0; i < *numDocs; i++ {
		topic := topicNames[rng.Intn(len(topicNames))]
		doc := document{
			ID:      fmt.Sprintf("doc-%06d", i),
			Content: sentence(rng, topics[topic], 20+rng.Intn(60)),
			Meta:    map[string]any{"topic": topic},
		}
		if err := enc.Encode(doc); err != nil {
			fmt.Fprintf(os.Stderr, "encode document: %v\n", err)
			os.Exit(1)
		}
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "flush output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d documents to %s\n", *numDocs, *output)
}

func sentence(rng *rand.Rand, vocab []string, words int) string {
	parts := make([]string, 0, words)
	for i := 0; i < words; i++ {
		if i%3 == 2 {
			parts = append(parts, connectives[rng.Intn(len(connectives))])
			continue
		}
		parts = append(parts, vocab[rng.Intn(len(vocab))])
	}
	return strings.Join(parts, " ")
}
