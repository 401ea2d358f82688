package mcp

import "github.com/mark3labs/mcp-go/mcp"

var goalAddToolDef = mcp.NewTool("goal_add",
	mcp.WithDescription("Create a goal: a target quantity of a unit (e.g. 50 km). Activities with the same unit count toward it."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Goal title, e.g. \"Correr 50 km em 30 dias\". Its first word is the matching keyword.")),
	mcp.WithNumber("target", mcp.Required(), mcp.Description("Target quantity, must be positive")),
	mcp.WithString("unit", mcp.Description("Unit of measure (default \"un\"). Compared exactly, case-sensitive.")),
)

var goalRemoveToolDef = mcp.NewTool("goal_remove",
	mcp.WithDescription("Delete a goal by id. Activities are kept."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Goal id")),
)

var goalRenameToolDef = mcp.NewTool("goal_rename",
	mcp.WithDescription("Replace a goal's title. An empty title is allowed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Goal id")),
	mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
)

var goalProgressToolDef = mcp.NewTool("goal_progress",
	mcp.WithDescription("Compute one goal's live progress and list the activities counted toward it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Goal id")),
	mcp.WithString("policy", mcp.Description("Override the matching policy: unit or keyword")),
)

var activityLogToolDef = mcp.NewTool("activity_log",
	mcp.WithDescription("Log an activity: a typed quantity on a date."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Activity type, e.g. \"Corrida\"")),
	mcp.WithNumber("amount", mcp.Required(), mcp.Description("Quantity, must be positive")),
	mcp.WithString("unit", mcp.Description("Unit of measure (default \"un\")")),
	mcp.WithString("date", mcp.Description("YYYY-MM-DD or RFC 3339 timestamp (default today, UTC)")),
)

var activityRemoveToolDef = mcp.NewTool("activity_remove",
	mcp.WithDescription("Delete an activity by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Activity id")),
)

var dashboardToolDef = mcp.NewTool("tracker_dashboard",
	mcp.WithDescription("Return every goal with progress, the recent activities, the full activity table, the daily chart series and the activity count."),
	mcp.WithString("policy", mcp.Description("Override the matching policy: unit or keyword")),
	mcp.WithNumber("recent_limit", mcp.Description("Length of the recent list (default from config, 6)")),
)

var clearToolDef = mcp.NewTool("tracker_clear",
	mcp.WithDescription("Delete all goals and activities. Irreversible."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
)

var sampleToolDef = mcp.NewTool("tracker_sample",
	mcp.WithDescription("Append a sample goal and three sample activities to the existing data."),
)

var reportToolDef = mcp.NewTool("tracker_report",
	mcp.WithDescription("Render the dashboard as a Markdown report."),
	mcp.WithString("policy", mcp.Description("Override the matching policy: unit or keyword")),
)

var exportToolDef = mcp.NewTool("tracker_export",
	mcp.WithDescription("Write all goals and activities to a JSON or YAML file in the exports directory."),
	mcp.WithString("path", mcp.Description("Destination (.json, .yaml or .yml). Default: <base>/exports/fittrack-<timestamp>.json")),
	mcp.WithString("format", mcp.Description("json or yaml; inferred from path when omitted")),
)

var importToolDef = mcp.NewTool("tracker_import",
	mcp.WithDescription("Load an export file. replace swaps the whole snapshot; merge appends records with unseen ids."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Export file to read")),
	mcp.WithString("mode", mcp.Description("replace (default) or merge")),
)
