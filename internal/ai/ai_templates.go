package ai

import (
	"fmt"
	"strings"

	"github.com/shanehull/finbrief/internal/types"
)

const sttInstruction = "請將這段音訊完整轉錄為文字。只輸出轉錄文字，不需要加時間戳記或說話者標記。"

// DefaultVideoPrompt is appended to each transcript when a show does not set
// its own summary prompt.
const DefaultVideoPrompt = `你是一位資深財經分析師。請分析以下影片逐字稿，產出一份精簡的影片摘要。

要求：
- 提煉 3-5 個核心觀點
- 標註提及的重要股票代號或公司名稱
- 指出對投資決策有影響的關鍵資訊
- 使用繁體中文
- 使用 markdown 格式
`

const digestIntro = "你是一位資深科技產業分析師。請分析以上新聞資料，並產出一份《每日金融與科技決策簡報》。\n"

const digestRules = `針對每個分類：
- 提煉 3-5 個核心要點
- 指出不同報導之間的矛盾點或潛在趨勢聯動
- 為每個分類標注重要程度：🔴 高 / 🟡 中 / 🟢 低
- 在要點中標註相關股票代號（如 2330.TW）

輸出格式要求：
- 使用繁體中文
- 每個分類用 ## 標題開頭
- 在分類標題旁標注重要程度 emoji
- 最後附上一段「綜合研判」總結當日整體趨勢
`

// buildDigestPrompt lists the articles first and puts the instructions last.
func buildDigestPrompt(items []types.RankedItem, categories []string) string {
	var b strings.Builder

	b.WriteString("--- 新聞資料開始 ---\n\n")
	for i, item := range items {
		fmt.Fprintf(&b, "[%d] 標題: %s\n", i+1, item.Title)
		fmt.Fprintf(&b, "    來源: %s\n", item.Source)
		if item.Summary != "" {
			fmt.Fprintf(&b, "    摘要: %s\n", item.Summary)
		}
		fmt.Fprintf(&b, "    連結: %s\n\n", item.Link)
	}
	b.WriteString("--- 新聞資料結束 ---\n\n")

	b.WriteString(digestIntro)
	b.WriteString("\n請將新聞歸類為以下分類：\n")
	for i, c := range categories {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	b.WriteString("\n")
	b.WriteString(digestRules)

	return b.String()
}

func buildVideoPrompt(video types.Video, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultVideoPrompt
	}
	lines := []string{
		"影片標題：" + video.Title,
		"頻道：" + video.Channel,
		"連結：" + video.URL,
		"",
		"--- 逐字稿開始 ---",
		video.Transcript,
		"--- 逐字稿結束 ---",
		"",
		prompt,
	}
	return strings.Join(lines, "\n")
}
