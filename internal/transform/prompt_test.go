package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_Labels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		intent Intent
		label  string
	}{
		{IntentAuto, "自動判定"},
		{IntentMeeting, "会議メモ"},
		{IntentRequirements, "要件メモ"},
		{IntentIncident, "インシデント記録"},
		{IntentStudy, "学習ノート"},
		{IntentDraftArticle, "記事下書き"},
		{IntentChatSummary, "チャット要約"},
		{IntentGeneric, "汎用メモ"},
		{Intent("unknown"), "自動判定"},
	}
	for _, tc := range cases {
		req := NewRequest("x")
		req.Intent = tc.intent
		require.Contains(t, BuildPrompt(req), "- 文書の種類: "+tc.label, "intent %s", tc.intent)
	}
}

func TestBuildPrompt_ModesAndRaw(t *testing.T) {
	t.Parallel()

	cases := map[Mode]string{
		ModeBalanced: "バランスよく整理してください。",
		ModeStrict:   "厳密に原文に忠実に整理してください。",
		ModeCompact:  "簡潔にまとめてください。",
		ModeVerbose:  "詳細に展開してください。",
	}
	for mode, want := range cases {
		req := NewRequest("x")
		req.Mode = mode
		require.Contains(t, BuildPrompt(req), "- "+want, "mode %s", mode)
	}

	req := NewRequest("x")
	p := BuildPrompt(req)
	require.Contains(t, p, "「## 原文」セクション")
	require.NotContains(t, p, "タイトルのヒント")
	require.NotContains(t, p, "{")

	req.IncludeRaw = false
	req.TitleHint = "  "
	p = BuildPrompt(req)
	require.Contains(t, p, "原文セクションは不要です。")
	require.NotContains(t, p, "タイトルのヒント")
	require.True(t, strings.HasSuffix(p, "説明や前置きは不要です。"))
}

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 7, 8, 9, 0, 0, time.UTC)
	cases := []struct {
		name string
		md   string
		want string
	}{
		{"timestamp kept", "# 2024-01-01 10:00_Test\n## サマリー", "2024-01-01 10:00_Test"},
		{"unsafe chars removed", "# a/b:c*d?e\"f<g>h|i\\j", "abcdefghij"},
		{"colon after prefix removed", "# 2024-01-01 10:00_A:B", "2024-01-01 10:00_AB"},
		{"skips level two", "## not me\n  # me  ", "me"},
		{"blank heading skipped", "# \n# second", "second"},
		{"no heading", "plain text", "2024-06-07 08:09_無題のメモ"},
		{"hash without space", "#tag\n", "2024-06-07 08:09_無題のメモ"},
		{"only unsafe", "# ///", "2024-06-07 08:09_無題のメモ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractTitle(tc.md, now))
		})
	}
}

func TestCheckSections(t *testing.T) {
	t.Parallel()

	require.Empty(t, checkSections(completeMarkdown))
	require.Equal(t, []string{
		"必須セクションが見つかりません: ",
		"必須セクションが見つかりません: サマリー",
		"必須セクションが見つかりません: 要点",
		"必須セクションが見つかりません: 詳細",
		"必須セクションが見つかりません: 不明点",
	}, checkSections("plain"))
}

func TestNewID(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)
	require.Equal(t, "20241231_235958_000000", newID(now, 0))
	require.Equal(t, "20241231_235958_fffffe", newID(now, 0xFFFFFE))
	require.Regexp(t, `^\d{8}_\d{6}_[0-9a-f]{6}$`, newID(now, randomSuffix()))
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	i, err := ParseIntent(" Meeting ")
	require.NoError(t, err)
	require.Equal(t, IntentMeeting, i)

	i, err = ParseIntent("")
	require.NoError(t, err)
	require.Equal(t, IntentAuto, i)

	_, err = ParseIntent("poem")
	require.Error(t, err)

	m, err := ParseMode("VERBOSE")
	require.NoError(t, err)
	require.Equal(t, ModeVerbose, m)

	_, err = ParseMode("loud")
	require.Error(t, err)

	require.Len(t, Intents(), 8)
	require.Len(t, Modes(), 4)
}
