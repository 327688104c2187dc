package session

import "github.com/browsermux/mediator/internal/a11y"

// This file holds the minimal CDP request/response shapes the Session
// needs (§6.3); payloads not read by this code are left undecoded.

type targetInfo struct {
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

type getTargetsResult struct {
	TargetInfos []targetInfo `json:"targetInfos"`
}

type attachToTargetResult struct {
	SessionID string `json:"sessionId"`
}

type createTargetResult struct {
	TargetID string `json:"targetId"`
}

type frameTreeResult struct {
	FrameTree struct {
		Frame struct {
			URL string `json:"url"`
		} `json:"frame"`
	} `json:"frameTree"`
}

type navigationHistoryEntry struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type navigationHistoryResult struct {
	CurrentIndex int                      `json:"currentIndex"`
	Entries      []navigationHistoryEntry `json:"entries"`
}

type evaluateResult struct {
	Result struct {
		Value any `json:"value"`
	} `json:"result"`
}

type boxModelResult struct {
	Model *struct {
		Content []float64 `json:"content"`
	} `json:"model"`
}

type layoutMetricsResult struct {
	ContentSize struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"contentSize"`
}

type captureScreenshotResult struct {
	Data string `json:"data"`
}

type fullAXTreeResult struct {
	Nodes []a11y.Node `json:"nodes"`
}

// screencastFrameEvent is the shape of Page.screencastFrame's params.
type screencastFrameEvent struct {
	Data      string `json:"data"`
	SessionID int    `json:"sessionId"`
}

// frameNavigatedEvent is the shape of Page.frameNavigated's params.
type frameNavigatedEvent struct {
	Frame struct {
		URL      string  `json:"url"`
		ParentID *string `json:"parentId,omitempty"`
	} `json:"frame"`
}

// targetEvent is the shape shared by Target.targetCreated/targetInfoChanged.
type targetEvent struct {
	TargetInfo targetInfo `json:"targetInfo"`
}

// targetDestroyedEvent is the shape of Target.targetDestroyed's params.
type targetDestroyedEvent struct {
	TargetID string `json:"targetId"`
}
