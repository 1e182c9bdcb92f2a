// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// ConnectErrorType represents the category of a database connection error
type ConnectErrorType int

const (
	ConnectErrorUnknown ConnectErrorType = iota
	ConnectErrorNetwork
	ConnectErrorAuth
	ConnectErrorTimeout
	ConnectErrorNoDatabase
	ConnectErrorTLS
)

// ParseConnectError categorizes a PostgreSQL connection error message
func ParseConnectError(errMsg string) ConnectErrorType {
	lower := strings.ToLower(errMsg)

	// Check for specific error patterns
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") || strings.Contains(lower, "connection reset") {
		return ConnectErrorNetwork
	}
	if strings.Contains(lower, "password authentication failed") || strings.Contains(lower, "pg_hba.conf") || strings.Contains(lower, "role") && strings.Contains(lower, "does not exist") {
		return ConnectErrorAuth
	}
	if strings.Contains(lower, "database") && strings.Contains(lower, "does not exist") {
		return ConnectErrorNoDatabase
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") {
		return ConnectErrorTimeout
	}
	if strings.Contains(lower, "ssl") || strings.Contains(lower, "tls") {
		return ConnectErrorTLS
	}

	return ConnectErrorUnknown
}

// FormatConnectError formats a database connection error in a user-friendly way
func FormatConnectError(errMsg string) string {
	errType := ParseConnectError(errMsg)

	var builder strings.Builder

	// Title
	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Connection Failed"))
	builder.WriteString("\n\n")

	// User-friendly description
	switch errType {
	case ConnectErrorNetwork:
		builder.WriteString("The database server could not be reached.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • The host or port in the DSN is wrong\n")
		builder.WriteString("  • The server is not running\n")
		builder.WriteString("  • A firewall is blocking the connection\n")

	case ConnectErrorAuth:
		builder.WriteString("The database rejected the credentials.\n")
		builder.WriteString("To fix this:\n")
		builder.WriteString("  • Check the username and password in the DSN\n")
		builder.WriteString("  • Check the server's pg_hba.conf allows your host\n")

	case ConnectErrorNoDatabase:
		builder.WriteString("The database named in the DSN does not exist.\n")
		builder.WriteString("Possible reasons:\n")
		builder.WriteString("  • A typo in the database name\n")
		builder.WriteString("  • The database has not been created yet\n")

	case ConnectErrorTimeout:
		builder.WriteString("The connection to the database timed out.\n")
		builder.WriteString("This could be due to:\n")
		builder.WriteString("  • Slow or unstable network\n")
		builder.WriteString("  • The server being overloaded\n")

	case ConnectErrorTLS:
		builder.WriteString("The TLS negotiation with the server failed.\n")
		builder.WriteString("Possible reasons:\n")
		builder.WriteString("  • The server requires SSL and the DSN disables it\n")
		builder.WriteString("  • A certificate problem on the server\n")
		builder.WriteString("  • Try adding ?sslmode=require or ?sslmode=disable to the DSN\n")

	default:
		builder.WriteString("The database connection could not be established.\n")
	}

	builder.WriteString("\n")

	// Action to take
	builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please check the DSN and run 'bulkfast connect' again"))
	builder.WriteString("\n")

	// Technical details (optional, for debugging)
	if strings.TrimSpace(errMsg) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}

	return builder.String()
}

// PresentConnectError displays a formatted connection error
func PresentConnectError(errMsg string) {
	fmt.Println()
	fmt.Println(FormatConnectError(errMsg))
	fmt.Println()
}
