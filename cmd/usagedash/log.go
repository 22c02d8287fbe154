package main

import (
	"log"
	"strings"
)

func infof(event, format string, args ...any) {
	if strings.TrimSpace(format) == "" {
		log.Printf("usagedash level=info event=%s", event)
		return
	}
	log.Printf("usagedash level=info event=%s "+format, append([]any{event}, args...)...)
}

func warnf(event, format string, args ...any) {
	if strings.TrimSpace(format) == "" {
		log.Printf("usagedash level=warn event=%s", event)
		return
	}
	log.Printf("usagedash level=warn event=%s "+format, append([]any{event}, args...)...)
}
