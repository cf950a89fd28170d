package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/priyansh-soni/honeypot-agent/internal/analysis/intel"
)

// intelprobe runs the extraction engine over a single text, useful for
// checking what a message would yield before replaying it through the
// API.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	text := flag.String("text", "", "message text to extract from (reads stdin when empty)")
	pretty := flag.Bool("pretty", true, "indent the JSON output")
	flag.Parse()

	input := *text
	if input == "" {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			log.Fatalf("failed to read stdin: %v", err)
		}
		input = strings.Join(lines, "\n")
	}

	if strings.TrimSpace(input) == "" {
		flag.Usage()
		log.Fatal("provide -text or pipe a message on stdin")
	}

	findings := intel.ExtractAll(input)

	var out []byte
	var err error
	if *pretty {
		out, err = json.MarshalIndent(findings, "", "  ")
	} else {
		out, err = json.Marshal(findings)
	}
	if err != nil {
		log.Fatalf("failed to encode findings: %v", err)
	}

	fmt.Println(string(out))
}
