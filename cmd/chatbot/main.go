package main

import (
	"os"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers team members' questions from the documents their team has uploaded.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: MGA Team Chatbot API
//   description: |
//     Retrieval-augmented question answering over per-team document folders.
//     Log in to get a session, upload TXT, PDF, DOCX, CSV or XLSX files for your team,
//     then ask questions; answers cite the excerpts they were built from.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json
// securityDefinitions:
//   bearer:
//     type: apiKey
//     name: Authorization
//     in: header

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
