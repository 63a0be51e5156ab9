package model

import "testing"

// ============================================================================
// 状态迁移
// ============================================================================

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ProjectStatus
		to      ProjectStatus
		wantErr bool
	}{
		{"未指派到指派", StatusUnassigned, StatusAssigned, false},
		{"指派到 25%", StatusAssigned, StatusInProgress25, false},
		{"允许跳级推进", StatusAssigned, StatusCompleted, false},
		{"同状态幂等", StatusInProgress50, StatusInProgress50, false},
		{"完成到关闭", StatusCompleted, StatusClosed, false},
		{"完成到发布", StatusCompleted, StatusPublished, false},
		{"不允许回退", StatusInProgress75, StatusInProgress25, true},
		{"closed 阻断一切变更", StatusClosed, StatusCompleted, true},
		{"closed 不能重开", StatusClosed, StatusUnassigned, true},
		{"未知状态", StatusAssigned, ProjectStatus("bogus"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.from.CanTransitionTo(tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("%s -> %s: err = %v, wantErr = %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestValidPercentage(t *testing.T) {
	tests := []struct {
		status  ProjectStatus
		pct     int
		wantErr bool
	}{
		{StatusUnassigned, 0, false},
		{StatusInProgress25, 25, false},
		{StatusInProgress50, 50, false},
		{StatusInProgress75, 75, false},
		{StatusCompleted, 100, false},
		{StatusPublished, 100, false},
		{StatusInProgress25, 50, true},
		{StatusCompleted, 75, true},
		{StatusAssigned, 101, true},
		{StatusAssigned, -1, true},
	}

	for _, tt := range tests {
		err := tt.status.ValidPercentage(tt.pct)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidPercentage(%s, %d): err = %v, wantErr = %v", tt.status, tt.pct, err, tt.wantErr)
		}
	}
}

func TestPercentage(t *testing.T) {
	if got := StatusInProgress50.Percentage(); got != 50 {
		t.Errorf("Percentage(in_progress_50) = %d, 期望 50", got)
	}
	if got := StatusUnassigned.Percentage(); got != 0 {
		t.Errorf("Percentage(unassigned) = %d, 期望 0", got)
	}
	if got := StatusClosed.Percentage(); got != 100 {
		t.Errorf("Percentage(closed) = %d, 期望 100", got)
	}
}

func TestTerminal(t *testing.T) {
	if !StatusClosed.Terminal() {
		t.Error("closed 应为终态")
	}
	// published 之后仍可评价并关闭
	if StatusPublished.Terminal() {
		t.Error("published 不是终态")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusInProgress25.Label(); got != "Just started" {
		t.Errorf("Label(in_progress_25) = %q", got)
	}
	if got := ProjectStatus("unknown").Label(); got != "unknown" {
		t.Errorf("未知状态 Label 应回退原值, got %q", got)
	}
}

// ============================================================================
// 项目辅助方法
// ============================================================================

func TestAssignable(t *testing.T) {
	p := &Project{Status: StatusUnassigned}
	if !p.Assignable() {
		t.Error("无剪辑师的 unassigned 项目应可请求访问")
	}

	p.EditorEmail = "editor@example.com"
	if p.Assignable() {
		t.Error("已有剪辑师的项目不应再接受访问请求")
	}

	p2 := &Project{Status: StatusCompleted}
	if p2.Assignable() {
		t.Error("completed 项目不应接受访问请求")
	}
}
