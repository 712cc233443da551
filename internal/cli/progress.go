package cli

import (
	"io"

	"github.com/pterm/pterm"
)

// chunkProgress 以进度条显示分块翻译进度。进度条在第一次回调时创建，
// 因为分块总数要到翻译开始才知道。
type chunkProgress struct {
	w     io.Writer
	bar   *pterm.ProgressbarPrinter
	shown int
}

func newChunkProgress(w io.Writer) *chunkProgress {
	return &chunkProgress{w: w}
}

// Update 满足 pipeline.ProgressFunc
func (p *chunkProgress) Update(done, total int) {
	if p.bar == nil {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Translating chunks").
			WithWriter(p.w).
			WithRemoveWhenDone(false).
			Start()
		if err != nil {
			return
		}
		p.bar = bar
	}
	p.bar.Add(done - p.shown)
	p.shown = done
	if done >= total {
		p.Stop()
	}
}

// Stop 结束进度条，可重复调用
func (p *chunkProgress) Stop() {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}
