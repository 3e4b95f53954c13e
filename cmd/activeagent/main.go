// activeagent talks to generation providers (Ollama and OpenAI-compatible
// servers) from the command line.
//
// Usage:
//
//	# Embed text with the configured Ollama server
//	activeagent embed "the quick brown fox"
//
//	# Embed every line of a file as CSV
//	activeagent embed --file inputs.txt --output csv
//
//	# Chat completion, streamed
//	activeagent complete --stream "Why is the sky blue?"
//
//	# List providers and check their health
//	activeagent providers --check
//
//	# Check health periodically and expose Prometheus metrics
//	activeagent providers watch --listen :9090
package main

import "os"

func main() {
	os.Exit(Execute())
}
