package service

import (
	"regexp"

	"github.com/vigil-robotics/vigil/pkg/detect/model"
)

// UnknownErrorType is assigned to error entries matching no named category.
const UnknownErrorType = "Unknown Error"

type severityRule struct {
	severity model.Severity
	patterns []*regexp.Regexp
}

type errorTypeRule struct {
	name     string
	patterns []*regexp.Regexp
}

// severityRules is scanned in priority order; the first tier with any
// matching pattern wins.
var severityRules = []severityRule{
	{
		severity: model.SeverityCritical,
		patterns: compilePatterns(
			`FATAL`,
			`CRITICAL`,
			`emergency stop`,
			`emergency_stop`,
			`power failure`,
			`hardware failure`,
			`collision`,
			`safety.*violated`,
		),
	},
	{
		severity: model.SeverityHigh,
		patterns: compilePatterns(
			`ERROR`,
			`exception`,
			`failed`,
			`unable`,
			`cannot`,
			`timeout`,
			`refused`,
		),
	},
	{
		severity: model.SeverityMedium,
		patterns: compilePatterns(
			`WARN`,
			`warning`,
			`deprecated`,
			`retry`,
			`unstable`,
		),
	},
	{
		severity: model.SeverityLow,
		patterns: compilePatterns(
			`DEBUG`,
			`trace`,
			`notice`,
		),
	},
}

// errorTypeRules is scanned in declaration order; the first category with a
// matching pattern wins.
var errorTypeRules = []errorTypeRule{
	{
		name: "Transform Timeout",
		patterns: compilePatterns(
			`transform.*timeout`,
			`lookup.*transform`,
			`can.*t.*lookup`,
			`no.*transform`,
		),
	},
	{
		name: "Planning Failure",
		patterns: compilePatterns(
			`plan.*fail`,
			`plan.*path`,
			`no.*valid.*path`,
			`goal.*unreachable`,
			`planning.*error`,
		),
	},
	{
		name: "Sensor Timeout",
		patterns: compilePatterns(
			`sensor.*timeout`,
			`laser.*timeout`,
			`camera.*timeout`,
			`no.*data.*received`,
			`sensor.*not.*respond`,
			`laser.*not.*respond`,
		),
	},
	{
		name: "Hardware Connection",
		patterns: compilePatterns(
			`connection.*refused`,
			`unable.*connect`,
			`hardware.*disconnected`,
			`communication.*error`,
		),
	},
	{
		name: "Joint Limit",
		patterns: compilePatterns(
			`joint.*limit`,
			`limit.*exceeded`,
			`out.*of.*range`,
			`position.*limit`,
		),
	},
	{
		name: "Collision Detected",
		patterns: compilePatterns(
			`collision`,
			`in.*collision`,
			`obstacle.*detected`,
			`contact.*detected`,
		),
	},
	{
		name: "Navigation Failure",
		patterns: compilePatterns(
			`navigation.*fail`,
			`move_base.*fail`,
			`abort.*navigation`,
		),
	},
	{
		name: "Controller Error",
		patterns: compilePatterns(
			`controller.*error`,
			`control.*fail`,
			`tracking.*error`,
		),
	},
	{
		name: "SLAM Error",
		patterns: compilePatterns(
			`slam.*error`,
			`localization.*fail`,
			`amcl.*error`,
		),
	},
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + pattern)
	}
	return compiled
}
