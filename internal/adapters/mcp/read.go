package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mediasweep/internal/application"
	"mediasweep/internal/application/commands"
	"mediasweep/internal/domain"
)

// RegisterReadTools adds all read-only reconciliation tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc *commands.Services) {
	s.AddTool(usageTool(), usageHandler(svc))
	s.AddTool(duplicatesTool(), duplicatesHandler(svc))
	s.AddTool(ghostsTool(), ghostsHandler(svc))
	s.AddTool(orphansTool(), orphansHandler(svc))
	s.AddTool(suggestTool(), suggestHandler(svc))
	s.AddTool(lastScanTool(), lastScanHandler(svc))
}

// --- usage ---

func usageTool() mcp.Tool {
	return mcp.NewTool("usage",
		mcp.WithDescription("Show where a media asset is used: every document, role and variant recorded by the last scan, plus its variant locks."),
		mcp.WithString("asset_id",
			mcp.Description("Media asset id (e.g. 42)"),
			mcp.Required(),
		),
	)
}

func usageHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assetID, err := parseID("asset_id", req.GetString("asset_id", ""))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewGetUsageLedgerEntryCommand(svc, assetID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, r := range result.Entry.All() {
			sb.WriteString(formatUsage(r))
			sb.WriteByte('\n')
		}
		for _, l := range result.Locks {
			fmt.Fprintf(&sb, "locked  %s  document %d\n", l.VariantName, l.DocumentID)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- find_duplicates ---

func duplicatesTool() mcp.Tool {
	return mcp.NewTool("find_duplicates",
		mcp.WithDescription("Group media assets that are copies of the same photo. With a document id, assets already used on that document are preferred as primary and only its dangling references are included."),
		mcp.WithString("document_id",
			mcp.Description("Document id to search from. Omit for a corpus-wide search."),
		),
	)
}

func duplicatesHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var (
			result *commands.FindDuplicatesResult
			err    error
		)
		if raw := req.GetString("document_id", ""); raw != "" {
			documentID, perr := parseID("document_id", raw)
			if perr != nil {
				return toolError(perr)
			}
			result, err = commands.NewFindDuplicatesForDocumentCommand(svc, documentID).Execute(ctx)
		} else {
			result, err = commands.NewFindDuplicatesCommand(svc).Execute(ctx)
		}
		if err != nil {
			return toolError(err)
		}

		if len(result.Groups) == 0 {
			return mcp.NewToolResultText("No duplicates found."), nil
		}
		var sb strings.Builder
		for _, g := range result.Groups {
			sb.WriteString(formatGroup(g))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- ghosts ---

func ghostsTool() mcp.Tool {
	return mcp.NewTool("ghosts",
		mcp.WithDescription("List the duplicate assets a document no longer references after linking."),
		mcp.WithString("primary_id",
			mcp.Description("Primary asset id of the duplicate group"),
			mcp.Required(),
		),
		mcp.WithString("duplicate_ids",
			mcp.Description("Comma-separated duplicate asset ids (e.g. 12,31)"),
			mcp.Required(),
		),
		mcp.WithString("document_id",
			mcp.Description("Document id"),
			mcp.Required(),
		),
	)
}

func ghostsHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		primaryID, err := parseID("primary_id", req.GetString("primary_id", ""))
		if err != nil {
			return toolError(err)
		}
		duplicateIDs, err := parseIDs("duplicate_ids", req.GetString("duplicate_ids", ""))
		if err != nil {
			return toolError(err)
		}
		documentID, err := parseID("document_id", req.GetString("document_id", ""))
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewGetGhostsCommand(svc, primaryID, duplicateIDs, documentID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(result.Ghosts) == 0 {
			return mcp.NewToolResultText("No ghosts."), nil
		}
		return mcp.NewToolResultText(formatIDs(result.Ghosts)), nil
	}
}

// --- find_orphans ---

func orphansTool() mcp.Tool {
	return mcp.NewTool("find_orphans",
		mcp.WithDescription("List image files in storage that no document uses, matched by base key."),
	)
}

func orphansHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewFindOrphansCommand(svc).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(result.Orphans, formatOrphan)
	}
}

// --- suggest_variant ---

func suggestTool() mcp.Tool {
	return mcp.NewTool("suggest_variant",
		mcp.WithDescription("Preselect the variant of an asset best suited to a role."),
		mcp.WithString("asset_id",
			mcp.Description("Media asset id"),
			mcp.Required(),
		),
		mcp.WithString("role",
			mcp.Description("Role (hero, background, carousel, gallery, avatar, icon, logo, video-poster, other)"),
			mcp.Required(),
		),
	)
}

func suggestHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assetID, err := parseID("asset_id", req.GetString("asset_id", ""))
		if err != nil {
			return toolError(err)
		}
		role := domain.ParseRole(req.GetString("role", ""))

		result, err := commands.NewSuggestVariantCommand(svc, assetID, role).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s\navailable: %s", result.Message, strings.Join(result.Available, ", "))), nil
	}
}

// --- last_scan ---

func lastScanTool() mcp.Tool {
	return mcp.NewTool("last_scan",
		mcp.WithDescription("Show the summary of the most recent completed corpus scan."),
	)
}

func lastScanHandler(svc *commands.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewLastScanCommand(svc).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatSummary(result.Summary, len(result.Duplicates), len(result.Orphans))), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func parseID(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got: %s", name, raw)
	}
	return id, nil
}

func parseIDs(name, raw string) ([]int64, error) {
	ids, err := application.ParseIDList(name, raw)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s is required", name)
	}
	return ids, nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func formatUsage(r domain.UsageRecord) string {
	variant := r.VariantName
	if variant == "" {
		variant = "-"
	}
	line := fmt.Sprintf("document %d  %s  %s  %s", r.DocumentID, r.Role, variant, r.FileURL)
	if r.Dangling {
		line += "  (dangling)"
	}
	return line
}

func formatGroup(g domain.DuplicateGroup) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  primary %d\n", g.BaseKey, g.PrimaryID)
	for _, d := range g.Duplicates {
		fmt.Fprintf(&sb, "  %d  %s  %s\n", d.ID, d.Source, d.File)
	}
	return sb.String()
}

func formatOrphan(o domain.OrphanCandidate) string {
	return fmt.Sprintf("%s  %s  %d bytes", o.Path, o.BaseKey, o.SizeBytes)
}

func formatSummary(s domain.ScanSummary, groups, orphans int) string {
	status := "complete"
	if s.Aborted {
		status = "aborted"
	}
	return fmt.Sprintf("run %s (%s) at %s in %s: %d documents, %d assets, %d uses, %d dangling, %d failed, %d duplicate groups, %d orphans",
		s.RunID, status, s.StartedAt.Format("2006-01-02 15:04:05"), s.Duration.Round(time.Millisecond),
		s.Documents, s.Assets, s.Uses, s.Dangling, len(s.Failed), groups, orphans)
}
