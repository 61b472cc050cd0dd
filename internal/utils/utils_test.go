package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeFromChineseName(t *testing.T) {
	code := GenerateCodeFromChineseName("铝合金支架")
	assert.Regexp(t, regexp.MustCompile(`^LHJZJ-\d{3}$`), code)
}

func TestGenerateRandomItem(t *testing.T) {
	item := GenerateRandomItem()
	assert.NotEmpty(t, item.Code)
	assert.NotEmpty(t, item.Name)
	assert.NotEmpty(t, item.Unit)
}

func TestGenerateRandomLine(t *testing.T) {
	items := []*domain.Item{{ID: 1}, {ID: 2}, {ID: 3}}
	line := GenerateRandomLine(7, items)

	assert.Equal(t, "LINE-007", line.Code)
	assert.Equal(t, "7号产线", line.Name)
	for _, capability := range line.Capabilities {
		assert.GreaterOrEqual(t, capability.HourlyCapacity, int32(10))
	}
}

func TestGenerateRandomBOMItemExcludesSelf(t *testing.T) {
	items := []*domain.Item{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	for i := 0; i < 20; i++ {
		bom := GenerateRandomBOMItem(items[0], items)
		assert.Equal(t, int64(1), bom.ItemID)
		for _, comp := range bom.Components {
			assert.NotEqual(t, int64(1), comp.MaterialID)
			assert.Greater(t, comp.Quantity, 0.0)
		}
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	password := GenerateRandomPassword(12)
	assert.Len(t, password, 12)
}

func TestValidatePlanningWindowTime(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	valid := &domain.PlanningWindow{HorizonStart: start, HorizonEnd: start.Add(72 * time.Hour)}
	require.NoError(t, ValidatePlanningWindowTime(valid))

	cases := []struct {
		name   string
		window *domain.PlanningWindow
	}{
		{"开始晚于结束", &domain.PlanningWindow{HorizonStart: start.Add(time.Hour), HorizonEnd: start}},
		{"开始等于结束", &domain.PlanningWindow{HorizonStart: start, HorizonEnd: start}},
		{"不足一小时", &domain.PlanningWindow{HorizonStart: start, HorizonEnd: start.Add(30 * time.Minute)}},
		{"超过 31 天", &domain.PlanningWindow{HorizonStart: start, HorizonEnd: start.Add(32 * 24 * time.Hour)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidatePlanningWindowTime(tc.window))
		})
	}
}
