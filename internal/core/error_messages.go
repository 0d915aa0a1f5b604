package core

// error_messages.go maps technical errors to short user-facing notices with
// a support code. Codes are grouped by category:
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - 至少保留一列数据              (deleting the last column)
//	SCH002 - 列名已存在，请换一个名称      (rename collides with another column)
//	SCH003 - 找不到该列                    (column reference is stale)
//	SCH004 - 分类轴列不能作为数据系列      (toggling the axis as a series)
//	SCH005 - 列名不能为空                  (blank column name)
//	SCH006 - 数据行与列不一致              (row keys differ from the columns)
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - 请至少包含表头和一行数据      (fewer than two non-blank lines)
//	IMP002 - 文件过大                      (upload exceeds the size limit)
//	IMP003 - 无法读取表格文件              (xlsx could not be opened)
//	IMP004 - 解析数据失败                  (any other import failure)
//
// # Workspace Errors (WS001-WS099)
//
//	WS001 - 工作区不存在或已过期
//	WS002 - 工作区数量已达上限
//	WS003 - 不支持的图表类型
//	WS004 - 排序方向无效
//
// # Render Errors (RND001-RND099)
//
//	RND001 - 暂无数据或未选择数据列        (nothing to draw)
//	RND002 - 导出繁忙                      (render limiter timeout)
//
// # Other
//
//	RATE001 - Too many requests
//	ERR000  - fallback; check the logs for the technical error

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is a user-facing explanation of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// errorMapping ties a sentinel (matched with errors.Is) to its message.
type errorMapping struct {
	target error
	msg    UserMessage
}

// errorMappings are checked in order; the first match wins.
var errorMappings = []errorMapping{
	// Schema
	{ErrLastColumn, UserMessage{"至少保留一列数据", "请先添加新列再删除此列", "SCH001"}},
	{ErrDuplicateColumn, UserMessage{"列名已存在，请换一个名称", "使用一个表格中尚未出现的列名", "SCH002"}},
	{ErrColumnNotFound, UserMessage{"找不到该列", "刷新页面后重试", "SCH003"}},
	{ErrAxisAsSeries, UserMessage{"分类轴列不能作为数据系列", "先选择其他列作为分类轴", "SCH004"}},
	{ErrBlankColumnName, UserMessage{"列名不能为空", "输入一个非空的列名", "SCH005"}},
	{ErrRaggedRow, UserMessage{"数据行与列不一致", "检查每一行的字段数量", "SCH006"}},

	// Import
	{ErrInsufficientRows, UserMessage{"数据格式似乎不对，请至少包含表头和一行数据。", "从Excel直接复制包含表头的区域", "IMP001"}},
	{ErrInputTooLarge, UserMessage{"文件过大", "拆分文件后分批导入", "IMP002"}},
	{ErrUnreadableWorkbook, UserMessage{"无法读取表格文件", "确认文件为 .xlsx 格式且未加密", "IMP003"}},

	// Workspace
	{ErrWorkspaceNotFound, UserMessage{"工作区不存在或已过期", "新建一个工作区", "WS001"}},
	{ErrTooManyWorkspaces, UserMessage{"工作区数量已达上限", "请稍后再试", "WS002"}},
	{ErrUnknownChartKind, UserMessage{"不支持的图表类型", "选择柱状图、条形图或饼图", "WS003"}},
	{ErrInvalidSortOrder, UserMessage{"排序方向无效", "使用 asc 或 desc", "WS004"}},

	// Render
	{ErrNothingToRender, UserMessage{"暂无数据或未选择数据列", "在表格中输入数据并选择至少一个数据列", "RND001"}},
	{ErrTooManyRenders, UserMessage{"导出繁忙", "请稍候再试", "RND002"}},
}

// errorPatterns catch errors from outside the package by message text
// (case-insensitive substring).
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
	{"context deadline exceeded", UserMessage{"请求超时", "请重试", "ERR001"}},
	{"context canceled", UserMessage{"请求已取消", "请重试", "ERR002"}},
}

// importFallback covers ImportErrors whose cause has no mapping.
var importFallback = UserMessage{"解析数据失败，请确保从Excel直接复制。", "检查分隔符是否为制表符", "IMP004"}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var ie *ImportError
	if errors.As(err, &ie) {
		return importFallback
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
