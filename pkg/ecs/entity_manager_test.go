package ecs

import (
	"testing"
)

// 测试组件类型定义
type testPositionComponent struct {
	X, Y float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager[testPositionComponent](4)
	id1 := em.CreateEntity(testPositionComponent{X: 1})
	id2 := em.CreateEntity(testPositionComponent{X: 2})

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}
	if id1 == InvalidEntity || id2 == InvalidEntity {
		t.Error("Entity IDs should never be 0")
	}
	if em.Len() != 2 {
		t.Errorf("Len() = %d, want 2", em.Len())
	}
}

func TestGetComponent(t *testing.T) {
	em := NewEntityManager[testPositionComponent](0)
	id := em.CreateEntity(testPositionComponent{X: 100, Y: 200})

	comp, found := em.GetComponent(id)
	if !found {
		t.Fatal("Component should be found")
	}
	if comp.X != 100 || comp.Y != 200 {
		t.Errorf("Component data mismatch, expected (100, 200), got (%f, %f)", comp.X, comp.Y)
	}

	// 修改通过指针生效
	comp.X = 5
	again, _ := em.GetComponent(id)
	if again.X != 5 {
		t.Errorf("mutation through pointer lost, got X=%f", again.X)
	}
}

func TestDestroyEntity_Deferred(t *testing.T) {
	em := NewEntityManager[testPositionComponent](0)
	id := em.CreateEntity(testPositionComponent{})

	if !em.DestroyEntity(id) {
		t.Fatal("first DestroyEntity should succeed")
	}
	if em.DestroyEntity(id) {
		t.Error("second DestroyEntity on the same id should be rejected")
	}

	// 标记后仍然存在，直到 RemoveMarkedEntities
	if !em.HasEntity(id) {
		t.Error("entity should still exist before RemoveMarkedEntities")
	}
	if em.PendingDestroy() != 1 {
		t.Errorf("PendingDestroy() = %d, want 1", em.PendingDestroy())
	}

	if removed := em.RemoveMarkedEntities(); removed != 1 {
		t.Errorf("RemoveMarkedEntities() = %d, want 1", removed)
	}
	if em.HasEntity(id) {
		t.Error("entity should be gone after RemoveMarkedEntities")
	}
	if em.Len() != 0 {
		t.Errorf("Len() = %d, want 0", em.Len())
	}
}

func TestSlotReuse_NeverReusesID(t *testing.T) {
	em := NewEntityManager[testPositionComponent](1)
	old := em.CreateEntity(testPositionComponent{X: 42})
	em.DestroyEntity(old)
	em.RemoveMarkedEntities()

	fresh := em.CreateEntity(testPositionComponent{})
	if fresh == old {
		t.Fatal("reused slot must produce a new EntityID")
	}
	if fresh.Index() != old.Index() {
		t.Errorf("expected slot %d to be reused, got %d", old.Index(), fresh.Index())
	}
	if _, ok := em.GetComponent(old); ok {
		t.Error("stale id must not resolve to the reused slot")
	}

	// 复用槽位时数据必须是新值，不能残留旧字段
	comp, _ := em.GetComponent(fresh)
	if comp.X != 0 {
		t.Errorf("reused slot leaked old field X=%f", comp.X)
	}
}

func TestEach_AllowsDestroyDuringIteration(t *testing.T) {
	em := NewEntityManager[testPositionComponent](0)
	for i := 0; i < 10; i++ {
		em.CreateEntity(testPositionComponent{X: float64(i)})
	}

	visited := 0
	em.Each(func(id EntityID, p *testPositionComponent) {
		visited++
		if int(p.X)%2 == 0 {
			em.DestroyEntity(id)
		}
	})
	if visited != 10 {
		t.Errorf("visited %d entities, want 10", visited)
	}

	em.RemoveMarkedEntities()
	if got := len(em.GetEntities()); got != 5 {
		t.Errorf("GetEntities() returned %d, want 5", got)
	}
}

func TestInvalidEntity(t *testing.T) {
	em := NewEntityManager[testPositionComponent](0)
	if em.HasEntity(InvalidEntity) {
		t.Error("InvalidEntity must never exist")
	}
	if em.DestroyEntity(EntityID(12345)) {
		t.Error("DestroyEntity on unknown id should return false")
	}
}
