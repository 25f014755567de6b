package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mediasweep/internal/application"
	"mediasweep/internal/application/commands"
)

// ScanOptions bounds corpus scans started over MCP
type ScanOptions struct {
	Workers int
	Timeout time.Duration
}

// RegisterWriteTools adds all tools that change the ledger, documents or storage.
func RegisterWriteTools(s *server.MCPServer, svc *commands.Services, opts ScanOptions) {
	s.AddTool(scanTool(), scanHandler(svc, opts))
	s.AddTool(linkTool(), linkHandler(svc))
	s.AddTool(deleteGhostsTool(), deleteGhostsHandler(svc))
	s.AddTool(lockTool(), lockHandler(svc, false))
	s.AddTool(unlockTool(), lockHandler(svc, true))
}

// --- scan_corpus ---

func scanTool() mcp.Tool {
	return mcp.NewTool("scan_corpus",
		mcp.WithDescription("Scan every document, rebuild the usage ledger and record duplicate groups and orphan files. An interrupted scan keeps the previous record."),
	)
}

func scanHandler(svc *commands.Services, opts ScanOptions) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewScanCorpusCommand(svc, opts.Workers, opts.Timeout).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if result.Summary.Aborted {
			return mcp.NewToolResultError(result.Message), nil
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- link_and_regenerate ---

func linkTool() mcp.Tool {
	return mcp.NewTool("link_and_regenerate",
		mcp.WithDescription("Point every reference to the duplicates in a document at the primary asset, then regenerate the primary's variants. Variants still used elsewhere or locked are never deleted."),
		mcp.WithString("primary_id",
			mcp.Description("Primary asset id"),
			mcp.Required(),
		),
		mcp.WithString("duplicate_ids",
			mcp.Description("Comma-separated duplicate asset ids to merge (e.g. 12,31)"),
		),
		mcp.WithString("variants",
			mcp.Description("Comma-separated role=variant pairs (e.g. hero=hero,carousel=carousel-photo)"),
			mcp.Required(),
		),
		mcp.WithString("document_id",
			mcp.Description("Document to rewrite"),
			mcp.Required(),
		),
	)
}

func linkHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		primaryID, err := parseID("primary_id", req.GetString("primary_id", ""))
		if err != nil {
			return toolError(err)
		}
		var duplicateIDs []int64
		if raw := req.GetString("duplicate_ids", ""); strings.TrimSpace(raw) != "" {
			if duplicateIDs, err = parseIDs("duplicate_ids", raw); err != nil {
				return toolError(err)
			}
		}
		variants, err := application.ParseRoleVariants(req.GetString("variants", ""))
		if err != nil {
			return toolError(err)
		}
		documentID, err := parseID("document_id", req.GetString("document_id", ""))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewLinkAndRegenerateCommand(svc, primaryID, duplicateIDs, variants, documentID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		if len(result.GeneratedVariants) > 0 {
			fmt.Fprintf(&sb, "generated: %s\n", strings.Join(result.GeneratedVariants, ", "))
		}
		for _, f := range result.DeletedGhostFiles {
			fmt.Fprintf(&sb, "removed: %s\n", f)
		}
		for _, f := range result.Failures {
			fmt.Fprintf(&sb, "failed: %s (%s)\n", f.ID, f.Reason)
		}
		if len(result.Verification) > 0 {
			fmt.Fprintf(&sb, "missing after verification: %s\n", strings.Join(result.Verification, ", "))
		}
		if len(result.Ghosts) > 0 {
			fmt.Fprintf(&sb, "ghosts: %s\n", formatIDs(result.Ghosts))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- delete_ghosts ---

func deleteGhostsTool() mcp.Tool {
	return mcp.NewTool("delete_ghosts",
		mcp.WithDescription("Permanently delete ghost assets with their files. Assets any document still uses are refused."),
		mcp.WithString("ids",
			mcp.Description("Comma-separated asset ids"),
			mcp.Required(),
		),
	)
}

func deleteGhostsHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := parseIDs("ids", req.GetString("ids", ""))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewDeleteGhostsCommand(svc, ids).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- lock_variant / unlock_variant ---

func lockTool() mcp.Tool {
	return mcp.NewTool("lock_variant",
		append([]mcp.ToolOption{
			mcp.WithDescription("Protect a variant of an asset from regeneration on behalf of a document."),
		}, lockParams()...)...,
	)
}

func unlockTool() mcp.Tool {
	return mcp.NewTool("unlock_variant",
		append([]mcp.ToolOption{
			mcp.WithDescription("Release a variant lock."),
		}, lockParams()...)...,
	)
}

func lockParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("asset_id",
			mcp.Description("Media asset id"),
			mcp.Required(),
		),
		mcp.WithString("document_id",
			mcp.Description("Document holding the lock"),
			mcp.Required(),
		),
		mcp.WithString("variant",
			mcp.Description("Variant name (e.g. hero)"),
			mcp.Required(),
		),
	}
}

func lockHandler(svc *commands.Services, unlock bool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assetID, err := parseID("asset_id", req.GetString("asset_id", ""))
		if err != nil {
			return toolError(err)
		}
		documentID, err := parseID("document_id", req.GetString("document_id", ""))
		if err != nil {
			return toolError(err)
		}
		variant := req.GetString("variant", "")

		cmd := commands.NewLockVariantCommand(svc, assetID, documentID, variant)
		if unlock {
			cmd = commands.NewUnlockVariantCommand(svc, assetID, documentID, variant)
		}
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
