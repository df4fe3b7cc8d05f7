package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindCollection(t *testing.T) {
	tests := map[Kind]string{
		KindClient:          "clients",
		KindRevenue:         "revenues",
		KindExpense:         "expenses",
		KindCredential:      "credentials",
		KindProject:         "projects",
		KindProjectActivity: "project_activities",
		KindBudget:          "budgets",
		KindReceipt:         "receipts",
		Kind("invoice"):     "",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.Collection(), string(kind))
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, ProjectInProgress.Valid())
	assert.False(t, ProjectStatus("done").Valid())
	assert.False(t, ProjectStatus("").Valid())

	assert.True(t, BudgetExpired.Valid())
	assert.False(t, BudgetStatus("paid").Valid())

	assert.True(t, ReceiptOverdue.Valid())
	assert.False(t, ReceiptStatus("approved").Valid())
}

func TestIdentityRecorder(t *testing.T) {
	assert.Equal(t, "Ana", Identity{UID: "u1", DisplayName: "Ana", Email: "ana@example.com"}.Recorder())
	assert.Equal(t, "ana@example.com", Identity{UID: "u1", Email: "ana@example.com"}.Recorder())
	assert.Equal(t, DefaultRecorder, Identity{UID: "u1"}.Recorder())
}
