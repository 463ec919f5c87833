package engine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/engine"
)

func newLoadedEngine(t *testing.T, values map[string]string, p domain.Permission) (*engine.Engine, *fakeStore, *fakeGateway) {
	t.Helper()
	st := newFakeStore(values)
	gw := newFakeGateway(p)
	e := engine.New(st, gw, zap.NewNop(), []domain.DisplayChannel{{ID: "health", Name: "Health"}})
	require.NoError(t, e.Load(context.Background()))
	gw.reset()
	return e, st, gw
}

func TestEngine_NotLoaded(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway(domain.PermissionGranted)
	e := engine.New(newFakeStore(nil), gw, zap.NewNop(), nil)

	require.ErrorIs(t, e.ToggleChannel(ctx, "weigh_in", true), engine.ErrNotLoaded)
	require.ErrorIs(t, e.SetWaterCount(ctx, 3), engine.ErrNotLoaded)
	require.ErrorIs(t, e.Reconcile(ctx), engine.ErrNotLoaded)
	require.Empty(t, gw.snapshotCalls())
}

func TestLoad(t *testing.T) {
	t.Run("DefaultsWhenStoreIsEmpty", func(t *testing.T) {
		e, _, _ := newLoadedEngine(t, nil, domain.PermissionGranted)

		got, err := e.EffectiveTime("weigh_in")
		require.NoError(t, err)
		require.Equal(t, "07:30", got)

		got, err = e.EffectiveTime("morning_boost")
		require.NoError(t, err)
		require.Equal(t, "08:00", got)

		snap := e.Snapshot()
		require.Equal(t, domain.PermissionGranted, snap.Permission)
		require.False(t, snap.Water.Enabled)
		require.Equal(t, 4, snap.Water.Count)
		require.Equal(t, "07:00", snap.Water.Start)
		require.Equal(t, "21:00", snap.Water.End)
	})

	t.Run("MalformedValuesFallBackToDefaults", func(t *testing.T) {
		e, _, _ := newLoadedEngine(t, map[string]string{
			"notif_weigh_in_time":         "99:99",
			"notif_lunch_time":            "12:15",
			"notif_water_count":           "12",
			"notif_water_start":           "bad",
			"notif_water_end":             "20:00",
			"notif_water_slot_0_time":     "x",
			"notif_water_slot_1_time":     "",
			"notif_morning_boost_time":    "05:00",
			"notif_morning_boost_enabled": "yes",
		}, domain.PermissionGranted)

		got, _ := e.EffectiveTime("weigh_in")
		require.Equal(t, "07:30", got)
		got, _ = e.EffectiveTime("lunch")
		require.Equal(t, "12:15", got)
		got, _ = e.EffectiveTime("lunch_checkin")
		require.Equal(t, "12:45", got)
		// Engage channels never read a stored time.
		got, _ = e.EffectiveTime("morning_boost")
		require.Equal(t, "08:00", got)

		snap := e.Snapshot()
		require.Equal(t, 4, snap.Water.Count)
		require.Equal(t, "07:00", snap.Water.Start)
		require.Equal(t, "20:00", snap.Water.End)
		for _, s := range snap.Water.Slots {
			require.False(t, s.Override)
		}
		for _, c := range snap.Channels {
			require.False(t, c.Enabled, c.Key)
		}
	})

	t.Run("ZeroCountFallsBackToFour", func(t *testing.T) {
		e, _, _ := newLoadedEngine(t, map[string]string{"notif_water_count": "0"}, domain.PermissionGranted)
		require.Equal(t, 4, e.Snapshot().Water.Count)
	})

	t.Run("RegistersDisplayChannelsAndSkipsReconcileWithoutPermission", func(t *testing.T) {
		st := newFakeStore(map[string]string{"notif_weigh_in_enabled": "true"})
		gw := newFakeGateway(domain.PermissionDenied)
		e := engine.New(st, gw, zap.NewNop(), []domain.DisplayChannel{{ID: "health"}, {ID: "hydration"}})
		require.NoError(t, e.Load(context.Background()))

		require.Equal(t, []string{"health", "hydration"}, gw.displays)
		require.Empty(t, gw.snapshotCalls())
		require.Equal(t, domain.PermissionDenied, e.Permission())
		require.Zero(t, gw.requests)
	})
}

func TestReconcile(t *testing.T) {
	values := map[string]string{
		"notif_weigh_in_enabled":      "true",
		"notif_weigh_in_time":         "06:45",
		"notif_meal_plan_enabled":     "true",
		"notif_morning_boost_enabled": "true",
		"notif_water_enabled":         "true",
		"notif_water_count":           "3",
		"notif_water_slot_1_time":     "12:00",
	}

	t.Run("SchedulesExactlyTheDesiredSet", func(t *testing.T) {
		st := newFakeStore(values)
		gw := newFakeGateway(domain.PermissionGranted)
		e := engine.New(st, gw, zap.NewNop(), nil)
		require.NoError(t, e.Load(context.Background()))

		ids := gw.scheduledIDs()
		require.Len(t, ids, 6)
		require.Equal(t, domain.TimeSpec{Hour: 6, Minute: 45}, ids[101].At)
		require.Equal(t, domain.TimeSpec{Hour: 7, Minute: 15}, ids[109].At)
		require.Equal(t, domain.TimeSpec{Hour: 10, Minute: 0, Weekday: 1}, ids[107].At)
		require.Equal(t, domain.TimeSpec{Hour: 7, Minute: 0}, ids[120].At)
		require.Equal(t, domain.TimeSpec{Hour: 12, Minute: 0}, ids[121].At)
		require.Equal(t, domain.TimeSpec{Hour: 21, Minute: 0}, ids[122].At)

		// every catalog id and every water id is cancelled before scheduling
		for _, c := range domain.Catalog() {
			require.Equal(t, 1, gw.count("cancel", c.NotificationID), c.Key)
		}
		for i := 0; i < domain.MaxWaterSlots; i++ {
			require.Equal(t, 1, gw.count("cancel", domain.WaterNotificationID(i)))
		}
	})

	t.Run("IsIdempotent", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, values, domain.PermissionGranted)
		ctx := context.Background()

		require.NoError(t, e.Reconcile(ctx))
		first := gw.snapshotCalls()
		firstSet := gw.scheduledIDs()
		gw.reset()

		require.NoError(t, e.Reconcile(ctx))
		require.Equal(t, first, gw.snapshotCalls())
		require.Equal(t, firstSet, gw.scheduledIDs())
	})

	t.Run("RepairsDrift", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, values, domain.PermissionGranted)
		gw.scheduled[102] = domain.Alert{ID: 102}
		delete(gw.scheduled, 121)

		require.NoError(t, e.Reconcile(context.Background()))
		ids := gw.scheduledIDs()
		require.NotContains(t, ids, 102)
		require.Contains(t, ids, 121)
	})

	t.Run("SkippedWhenPermissionRevoked", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, values, domain.PermissionGranted)
		gw.permission = domain.PermissionDenied

		require.NoError(t, e.Reconcile(context.Background()))
		require.Empty(t, gw.snapshotCalls())
		require.Equal(t, domain.PermissionDenied, e.Permission())
	})
}

func TestToggleChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("EnableSchedulesAtStoredTime", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, map[string]string{"notif_bedtime_time": "23:15"}, domain.PermissionGranted)

		require.NoError(t, e.ToggleChannel(ctx, "bedtime", true))
		v, _ := st.get("notif_bedtime_enabled")
		require.Equal(t, "true", v)
		at, ok := gw.scheduledAt(103)
		require.True(t, ok)
		require.Equal(t, domain.TimeSpec{Hour: 23, Minute: 15}, at)
		require.Zero(t, gw.requests)
	})

	t.Run("EngageChannelUsesDerivedTime", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, nil, domain.PermissionGranted)

		require.NoError(t, e.ToggleChannel(ctx, "lunch_checkin", true))
		at, ok := gw.scheduledAt(110)
		require.True(t, ok)
		require.Equal(t, domain.TimeSpec{Hour: 13, Minute: 30}, at)
	})

	t.Run("WeeklyChannelKeepsWeekday", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, nil, domain.PermissionGranted)

		require.NoError(t, e.ToggleChannel(ctx, "grocery_list", true))
		at, _ := gw.scheduledAt(108)
		require.Equal(t, 7, at.Weekday)
	})

	t.Run("DisableCancels", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, map[string]string{"notif_dinner_enabled": "true"}, domain.PermissionGranted)
		gw.scheduled[106] = domain.Alert{ID: 106}

		require.NoError(t, e.ToggleChannel(ctx, "dinner", false))
		v, _ := st.get("notif_dinner_enabled")
		require.Equal(t, "false", v)
		require.Equal(t, 1, gw.count("cancel", 106))
		require.Zero(t, gw.countAction("schedule"))
	})

	t.Run("PermissionDeniedPersistsDisabled", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, nil, domain.PermissionDenied)

		err := e.ToggleChannel(ctx, "lunch", true)
		require.ErrorIs(t, err, engine.ErrPermissionDenied)
		v, _ := st.get("notif_lunch_enabled")
		require.Equal(t, "false", v)
		require.Zero(t, gw.countAction("schedule"))
		require.Equal(t, 1, gw.requests)
		require.False(t, e.Snapshot().Channels[4].Enabled)
	})

	t.Run("PromptIsRequestedOnce", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, nil, domain.PermissionPrompt)
		gw.onRequest = domain.PermissionGranted

		require.NoError(t, e.ToggleChannel(ctx, "bedtime", true))
		require.NoError(t, e.ToggleChannel(ctx, "sleep_log", true))
		require.Equal(t, 1, gw.requests)
		require.Equal(t, domain.PermissionGranted, e.Permission())
		require.Len(t, gw.scheduledIDs(), 2)
	})

	t.Run("DisablingNeverAsksForPermission", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, nil, domain.PermissionDenied)

		require.NoError(t, e.ToggleChannel(ctx, "lunch", false))
		require.Zero(t, gw.requests)
	})

	t.Run("GatewayFailureKeepsPersistedIntent", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, nil, domain.PermissionGranted)
		gw.failAll = true

		require.NoError(t, e.ToggleChannel(ctx, "dinner", true))
		v, _ := st.get("notif_dinner_enabled")
		require.Equal(t, "true", v)
		require.True(t, e.Snapshot().Channels[5].Enabled)
	})

	t.Run("UnknownChannel", func(t *testing.T) {
		e, _, _ := newLoadedEngine(t, nil, domain.PermissionGranted)
		require.ErrorIs(t, e.ToggleChannel(ctx, "nope", true), engine.ErrUnknownChannel)
	})
}

func TestSetChannelTime(t *testing.T) {
	ctx := context.Background()

	t.Run("CascadesToEnabledEngageChannel", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, map[string]string{
			"notif_weigh_in_enabled":      "true",
			"notif_morning_boost_enabled": "true",
		}, domain.PermissionGranted)

		require.NoError(t, e.SetChannelTime(ctx, "weigh_in", "08:00"))

		got, err := e.EffectiveTime("morning_boost")
		require.NoError(t, err)
		require.Equal(t, "08:30", got)
		require.Equal(t, 1, gw.count("schedule", 109))
		at, _ := gw.scheduledAt(109)
		require.Equal(t, domain.TimeSpec{Hour: 8, Minute: 30}, at)

		calls := gw.snapshotCalls()
		require.Equal(t, []gatewayCall{
			{Action: "cancel", ID: 101},
			{Action: "schedule", ID: 101, At: domain.TimeSpec{Hour: 8}},
			{Action: "cancel", ID: 109},
			{Action: "schedule", ID: 109, At: domain.TimeSpec{Hour: 8, Minute: 30}},
		}, calls)

		v, _ := st.get("notif_weigh_in_time")
		require.Equal(t, "08:00", v)
		_, stored := st.get("notif_morning_boost_time")
		require.False(t, stored)
	})

	t.Run("DisabledEngageChannelIsNotScheduled", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, map[string]string{"notif_weigh_in_enabled": "true"}, domain.PermissionGranted)

		require.NoError(t, e.SetChannelTime(ctx, "weigh_in", "08:00"))
		require.Zero(t, gw.count("schedule", 109))
		got, _ := e.EffectiveTime("morning_boost")
		require.Equal(t, "08:30", got)
	})

	t.Run("DisabledChannelOnlyPersists", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, nil, domain.PermissionGranted)

		require.NoError(t, e.SetChannelTime(ctx, "lunch", "7:05"))
		v, _ := st.get("notif_lunch_time")
		require.Equal(t, "07:05", v)
		require.Empty(t, gw.snapshotCalls())
	})

	t.Run("LateTimeSaturatesDerivedChannel", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, map[string]string{"notif_evening_recap_enabled": "true"}, domain.PermissionGranted)

		require.NoError(t, e.SetChannelTime(ctx, "dinner", "23:50"))
		at, _ := gw.scheduledAt(111)
		require.Equal(t, domain.TimeSpec{Hour: 23, Minute: 59}, at)
	})

	t.Run("EngageChannelRejected", func(t *testing.T) {
		e, st, _ := newLoadedEngine(t, nil, domain.PermissionGranted)
		require.ErrorIs(t, e.SetChannelTime(ctx, "morning_boost", "09:00"), engine.ErrDerivedTime)
		require.Zero(t, st.writes)
	})

	t.Run("InvalidTimeRejected", func(t *testing.T) {
		e, st, _ := newLoadedEngine(t, nil, domain.PermissionGranted)
		require.ErrorIs(t, e.SetChannelTime(ctx, "lunch", "25:00"), domain.ErrInvalidClock)
		require.Zero(t, st.writes)
	})

	t.Run("WriteFailureLeavesStateUntouched", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, map[string]string{
			"notif_dinner_enabled":        "true",
			"notif_evening_recap_enabled": "true",
		}, domain.PermissionGranted)
		st.fail = true

		require.Error(t, e.SetChannelTime(ctx, "dinner", "20:00"))
		got, _ := e.EffectiveTime("dinner")
		require.Equal(t, "19:00", got)
		got, _ = e.EffectiveTime("evening_recap")
		require.Equal(t, "19:30", got)
		require.Empty(t, gw.snapshotCalls())
	})
}

func TestWater(t *testing.T) {
	ctx := context.Background()
	enabled := map[string]string{"notif_water_enabled": "true"}

	t.Run("ToggleOnSchedulesCountSlots", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, nil, domain.PermissionGranted)

		require.NoError(t, e.ToggleWater(ctx, true))
		v, _ := st.get("notif_water_enabled")
		require.Equal(t, "true", v)
		ids := gw.scheduledIDs()
		require.Len(t, ids, 4)
		require.Equal(t, domain.TimeSpec{Hour: 11, Minute: 40}, ids[121].At)
		require.Equal(t, domain.WaterDisplayID, ids[121].DisplayChannel)
	})

	t.Run("ToggleOffCancelsAllEight", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, enabled, domain.PermissionGranted)

		require.NoError(t, e.ToggleWater(ctx, false))
		require.Equal(t, 8, gw.countAction("cancel"))
		require.Empty(t, gw.scheduledIDs())
	})

	t.Run("ToggleOnDenied", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, nil, domain.PermissionPromptWithRationale)
		gw.onRequest = domain.PermissionDenied

		require.ErrorIs(t, e.ToggleWater(ctx, true), engine.ErrPermissionDenied)
		v, _ := st.get("notif_water_enabled")
		require.Equal(t, "false", v)
		require.Zero(t, gw.countAction("schedule"))
	})

	t.Run("CountShrinkCancelsTail", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, enabled, domain.PermissionGranted)

		require.NoError(t, e.SetWaterCount(ctx, 2))
		v, _ := st.get("notif_water_count")
		require.Equal(t, "2", v)
		ids := gw.scheduledIDs()
		require.Len(t, ids, 2)
		require.Equal(t, domain.TimeSpec{Hour: 7}, ids[120].At)
		require.Equal(t, domain.TimeSpec{Hour: 21}, ids[121].At)
		for i := 2; i < domain.MaxWaterSlots; i++ {
			require.Equal(t, 1, gw.count("cancel", domain.WaterNotificationID(i)))
		}
	})

	t.Run("CountIsClamped", func(t *testing.T) {
		e, st, _ := newLoadedEngine(t, nil, domain.PermissionGranted)

		require.NoError(t, e.SetWaterCount(ctx, 20))
		v, _ := st.get("notif_water_count")
		require.Equal(t, "8", v)
		require.NoError(t, e.SetWaterCount(ctx, -1))
		v, _ = st.get("notif_water_count")
		require.Equal(t, "1", v)
	})

	t.Run("CountChangeWhileDisabledOnlyCancels", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, nil, domain.PermissionGranted)

		require.NoError(t, e.SetWaterCount(ctx, 3))
		require.Zero(t, gw.countAction("schedule"))
		require.Equal(t, 5, gw.countAction("cancel"))
	})

	t.Run("SlotOverrideReschedulesOnlyThatSlot", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, enabled, domain.PermissionGranted)

		require.NoError(t, e.SetWaterSlotTime(ctx, 2, "13:15"))
		v, _ := st.get("notif_water_slot_2_time")
		require.Equal(t, "13:15", v)
		require.Equal(t, []gatewayCall{
			{Action: "cancel", ID: 122},
			{Action: "schedule", ID: 122, At: domain.TimeSpec{Hour: 13, Minute: 15}},
		}, gw.snapshotCalls())
	})

	t.Run("InactiveSlotOverrideIsOnlyPersisted", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, enabled, domain.PermissionGranted)

		require.NoError(t, e.SetWaterSlotTime(ctx, 6, "22:00"))
		require.Empty(t, gw.snapshotCalls())
	})

	t.Run("SlotOutOfRange", func(t *testing.T) {
		e, _, _ := newLoadedEngine(t, enabled, domain.PermissionGranted)
		require.ErrorIs(t, e.SetWaterSlotTime(ctx, 8, "10:00"), engine.ErrSlotOutOfRange)
		require.ErrorIs(t, e.SetWaterSlotTime(ctx, -1, "10:00"), engine.ErrSlotOutOfRange)
	})

	t.Run("ResetAfterCountChangeRestoresAutoTime", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, enabled, domain.PermissionGranted)

		require.NoError(t, e.SetWaterSlotTime(ctx, 2, "13:15"))
		require.NoError(t, e.SetWaterCount(ctx, 6))
		require.Equal(t, "13:15", e.WaterSlotTimes()[2])

		require.NoError(t, e.ResetWaterSpacing(ctx))
		want := domain.Distribute(6, "07:00", "21:00")
		require.Equal(t, want, e.WaterSlotTimes())
		at, _ := gw.scheduledAt(122)
		require.Equal(t, domain.SpecAt(want[2], 0), at)
	})

	t.Run("WindowChangeClearsOverrides", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, enabled, domain.PermissionGranted)
		require.NoError(t, e.SetWaterSlotTime(ctx, 0, "06:30"))
		require.NoError(t, e.SetWaterSlotTime(ctx, 5, "23:00"))

		require.NoError(t, e.SetWaterWindow(ctx, "08:00", "20:00"))
		for i := 0; i < domain.MaxWaterSlots; i++ {
			v, ok := st.get(fmt.Sprintf("notif_water_slot_%d_time", i))
			require.True(t, ok)
			require.Empty(t, v)
		}
		snap := e.Snapshot()
		for _, s := range snap.Water.Slots {
			require.False(t, s.Override)
		}
		require.Equal(t, []string{"08:00", "12:00", "16:00", "20:00"}, e.WaterSlotTimes())
		at, _ := gw.scheduledAt(120)
		require.Equal(t, domain.TimeSpec{Hour: 8}, at)
	})

	t.Run("InvalidWindowRejected", func(t *testing.T) {
		e, st, _ := newLoadedEngine(t, enabled, domain.PermissionGranted)
		require.ErrorIs(t, e.SetWaterWindow(ctx, "8am", "20:00"), domain.ErrInvalidClock)
		require.Zero(t, st.writes)
	})

	t.Run("PartialWindowWriteIsRestored", func(t *testing.T) {
		stored := map[string]string{
			"notif_water_start":       "07:00",
			"notif_water_end":         "21:00",
			"notif_water_slot_3_time": "13:15",
		}
		e, st, gw := newLoadedEngine(t, stored, domain.PermissionGranted)
		before := e.WaterSlotTimes()
		require.Equal(t, []string{"07:00", "11:40", "16:20", "13:15"}, before)

		st.failOn = st.attempts + 2 // start is written, end fails
		require.Error(t, e.SetWaterWindow(ctx, "09:00", "18:00"))

		v, _ := st.get("notif_water_start")
		require.Equal(t, "07:00", v)
		v, _ = st.get("notif_water_slot_3_time")
		require.Equal(t, "13:15", v)
		require.Equal(t, before, e.WaterSlotTimes())
		require.Zero(t, gw.countAction("schedule"))

		reloaded := engine.New(st, newFakeGateway(domain.PermissionGranted), zap.NewNop(), nil)
		require.NoError(t, reloaded.Load(ctx))
		require.Equal(t, before, reloaded.WaterSlotTimes())
	})
}

func TestBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("EnableAllRequestsOnceAndUsesDisjointIDs", func(t *testing.T) {
		e, _, gw := newLoadedEngine(t, map[string]string{"notif_water_count": "8"}, domain.PermissionPrompt)
		gw.onRequest = domain.PermissionGranted

		require.NoError(t, e.EnableAll(ctx))
		require.Equal(t, 1, gw.requests)

		ids := gw.scheduledIDs()
		catalog := domain.Catalog()
		require.Len(t, ids, len(catalog)+domain.MaxWaterSlots)
		for _, c := range catalog {
			require.Equal(t, c.Title(), ids[c.NotificationID].Title)
		}
		for i := 0; i < domain.MaxWaterSlots; i++ {
			require.Equal(t, domain.WaterDisplayID, ids[domain.WaterNotificationID(i)].DisplayChannel)
		}
	})

	t.Run("EnableAllDeniedWritesNothing", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, nil, domain.PermissionDenied)

		require.ErrorIs(t, e.EnableAll(ctx), engine.ErrPermissionDenied)
		require.Zero(t, st.writes)
		require.Zero(t, gw.countAction("schedule"))
	})

	t.Run("DisableAllCancelsEverything", func(t *testing.T) {
		e, st, gw := newLoadedEngine(t, nil, domain.PermissionGranted)
		require.NoError(t, e.EnableAll(ctx))
		require.NotEmpty(t, gw.scheduledIDs())

		require.NoError(t, e.DisableAll(ctx))
		require.Empty(t, gw.scheduledIDs())
		for _, c := range domain.Catalog() {
			v, _ := st.get("notif_" + c.Key + "_enabled")
			require.Equal(t, "false", v, c.Key)
		}
		v, _ := st.get("notif_water_enabled")
		require.Equal(t, "false", v)
	})
}

// Serialized operations: after any interleaving of toggles, the device schedule
// matches the last persisted value.
func TestConcurrentTogglesConverge(t *testing.T) {
	e, st, gw := newLoadedEngine(t, nil, domain.PermissionGranted)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			_ = e.ToggleChannel(ctx, "sleep_log", on)
		}(i%2 == 0)
	}
	wg.Wait()

	v, _ := st.get("notif_sleep_log_enabled")
	_, scheduled := gw.scheduledAt(102)
	require.Equal(t, v == "true", scheduled)
}

func TestSnapshotYAML(t *testing.T) {
	e, _, _ := newLoadedEngine(t, map[string]string{"notif_water_enabled": "true"}, domain.PermissionGranted)

	out, err := e.Snapshot().YAML()
	require.NoError(t, err)
	require.Contains(t, string(out), "permission: granted")
	require.Contains(t, string(out), "key: weigh_in")
	require.Contains(t, string(out), "adapts_to: weigh_in")
}
