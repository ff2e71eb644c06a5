package transform

import (
	"strings"
)

var intentLabels = map[Intent]string{
	IntentMeeting:      "会議メモ",
	IntentRequirements: "要件メモ",
	IntentIncident:     "インシデント記録",
	IntentStudy:        "学習ノート",
	IntentDraftArticle: "記事下書き",
	IntentChatSummary:  "チャット要約",
	IntentGeneric:      "汎用メモ",
}

const defaultIntentLabel = "自動判定"

var modeInstructions = map[Mode]string{
	ModeStrict:  "厳密に原文に忠実に整理してください。",
	ModeCompact: "簡潔にまとめてください。",
	ModeVerbose: "詳細に展開してください。",
}

const defaultModeInstruction = "バランスよく整理してください。"

const (
	rawIncluded = "最後に「---」の後に「## 原文」セクションとして入力テキストをそのまま含めてください。"
	rawOmitted  = "原文セクションは不要です。"
)

const promptTemplate = `あなたはメモ整形アシスタントです。入力されたテキストを以下のMarkdown構造に変換してください。

## 出力テンプレート（必須）:
1. # タイトル（形式: YYYY-MM-DD HH:mm_推定タイトル、推定タイトルは最大30文字）
2. ## サマリー
3. ## 要点
4. ## 詳細
5. ## 不明点 / 要確認

## 任意セクション（内容がある場合のみ）:
- ## 決定事項 / 結論
- ## TODO / 次アクション（TODOは - [ ] 形式）
- ## 参照 / リンク

{raw_section}

## ルール:
- 推測で情報を補完しない（不明な点は「不明点」に記載）
- 固有名詞・専門用語は原文のまま維持
- 文書の種類: {intent_label}
- {mode_instruction}
{title_hint}

入力テキストが標準入力から渡されます。Markdownのみを出力してください。説明や前置きは不要です。`

func intentLabel(i Intent) string {
	if label, ok := intentLabels[i]; ok {
		return label
	}
	return defaultIntentLabel
}

func modeInstruction(m Mode) string {
	if s, ok := modeInstructions[m]; ok {
		return s
	}
	return defaultModeInstruction
}

// BuildPrompt renders the instruction passed to the CLI via -p. The memo
// text itself goes over stdin.
func BuildPrompt(req Request) string {
	raw := rawOmitted
	if req.IncludeRaw {
		raw = rawIncluded
	}

	hint := ""
	if h := strings.TrimSpace(req.TitleHint); h != "" {
		hint = "タイトルのヒント: " + h
	}

	r := strings.NewReplacer(
		"{raw_section}", raw,
		"{intent_label}", intentLabel(req.intent()),
		"{mode_instruction}", modeInstruction(req.mode()),
		"{title_hint}", hint,
	)
	return r.Replace(promptTemplate)
}
