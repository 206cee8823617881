package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	retrieval "github.com/Jash2606/vector-graph-retrieval-app"
	"github.com/Jash2606/vector-graph-retrieval-app/ingestion"
)

// Small corpus for smoke-testing the pipeline and the hybrid searcher:
// overlapping people, places, and dates so entity linking and auto-linking
// both have something to chew on.
var documents = []string{
	"Albert Einstein was born in Ulm, Germany in 1879 and developed the theory of relativity.",
	"Einstein joined the Institute for Advanced Study in Princeton in 1933.",
	"Marie Curie won the Nobel Prize in Physics in 1903 and in Chemistry in 1911.",
	"Marie Curie founded the Radium Institute in Paris in 1914.",
	"Niels Bohr proposed his model of the atom in Copenhagen in 1913.",
	"Bohr and Einstein debated quantum mechanics at the Solvay Conference in 1927.",
	"Isaac Newton published the Principia in 1687 while at Cambridge.",
	"The Royal Society in London elected Newton as its president in 1703.",
	"Ada Lovelace wrote the first published algorithm in 1843.",
	"Charles Babbage designed the Analytical Engine in London.",
	"Alan Turing formalized computation at Cambridge in 1936.",
	"Turing worked at Bletchley Park during the war and later in Manchester.",
	"Grace Hopper developed the first compiler in 1952.",
	"Claude Shannon founded information theory at Bell Labs in 1948.",
	"Rosalind Franklin produced the X-ray images of DNA in London in 1952.",
	"Watson and Crick published the structure of DNA in Cambridge in 1953.",
	"Dmitri Mendeleev arranged the periodic table in Saint Petersburg in 1869.",
	"Charles Darwin published On the Origin of Species in 1859.",
	"Darwin sailed on the Beagle to the Galapagos Islands in 1835.",
	"Galileo Galilei observed the moons of Jupiter from Padua in 1610.",
}

var seedFileName = flag.String("src", "", "file of seed documents, one per line")
var dbPath = flag.String("db", "./retrieval_db", "path to the data directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// ingestAll runs every line through the pipeline as its own document.
func ingestAll(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[string]) error {
	count := 0
	for line := range source {
		if line == "" {
			continue
		}
		result, err := pipeline.Ingest(ctx, line, fmt.Sprintf("seed-%d", count), nil)
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			slog.Warn("ingest warning", "documentId", result.DocumentId, "warning", warning)
		}
		count++
	}
	slog.Info("seeding complete", "documents", count)
	return nil
}

func main() {
	db, err := retrieval.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(documents)
	}

	if err := ingestAll(ctx, pipeline, source); err != nil {
		panic(err)
	}
}
