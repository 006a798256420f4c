// Package ecs 提供粒子等短生命周期实体的数据存储
//
// 实体以槽位数组（arena）方式存放，EntityID 由槽位索引和代数组成：
// 槽位可以被复用，但 EntityID 永远不会被复用。
package ecs

// EntityID 是实体的唯一标识符
// 低 32 位为槽位索引，高 32 位为代数（generation），0 保留为无效ID
type EntityID uint64

// InvalidEntity 无效实体ID
const InvalidEntity EntityID = 0

func makeEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index 返回槽位索引
func (id EntityID) Index() uint32 {
	return uint32(id)
}

// Generation 返回代数
func (id EntityID) Generation() uint32 {
	return uint32(id >> 32)
}

type slot[T any] struct {
	generation uint32
	alive      bool
	marked     bool
	value      T
}

// EntityManager 管理同一类型组件的所有实体
//
// 删除是延迟的：DestroyEntity 只做标记，RemoveMarkedEntities 统一释放槽位，
// 这样在遍历过程中销毁实体是安全的。
type EntityManager[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
	// 待删除的实体ID列表
	entitiesToDestroy []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
// capacity 为预分配的槽位数量
func NewEntityManager[T any](capacity int) *EntityManager[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &EntityManager[T]{
		slots:             make([]slot[T], 0, capacity),
		free:              make([]uint32, 0, capacity),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager[T]) CreateEntity(value T) EntityID {
	var index uint32
	if n := len(em.free); n > 0 {
		index = em.free[n-1]
		em.free = em.free[:n-1]
	} else {
		index = uint32(len(em.slots))
		// 代数从1开始，保证ID永远不为0
		em.slots = append(em.slots, slot[T]{generation: 1})
	}

	s := &em.slots[index]
	s.alive = true
	s.marked = false
	s.value = value
	em.live++
	return makeEntityID(index, s.generation)
}

func (em *EntityManager[T]) lookup(id EntityID) (*slot[T], bool) {
	index := id.Index()
	if id == InvalidEntity || int(index) >= len(em.slots) {
		return nil, false
	}
	s := &em.slots[index]
	if !s.alive || s.generation != id.Generation() {
		return nil, false
	}
	return s, true
}

// GetComponent 获取实体数据的指针
// 已释放或过期的ID返回 false
func (em *EntityManager[T]) GetComponent(id EntityID) (*T, bool) {
	s, ok := em.lookup(id)
	if !ok {
		return nil, false
	}
	return &s.value, true
}

// HasEntity 检查实体是否仍然存在（包括已标记待删除的实体）
func (em *EntityManager[T]) HasEntity(id EntityID) bool {
	_, ok := em.lookup(id)
	return ok
}

// DestroyEntity 标记实体待删除(不立即删除)
// 重复标记或无效ID返回 false
func (em *EntityManager[T]) DestroyEntity(id EntityID) bool {
	s, ok := em.lookup(id)
	if !ok || s.marked {
		return false
	}
	s.marked = true
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
	return true
}

// RemoveMarkedEntities 清理所有标记删除的实体
// 返回释放的实体数量；释放的槽位数据被清零，代数加一
func (em *EntityManager[T]) RemoveMarkedEntities() int {
	removed := 0
	for _, id := range em.entitiesToDestroy {
		s, ok := em.lookup(id)
		if !ok {
			continue
		}
		var zero T
		s.value = zero
		s.alive = false
		s.marked = false
		s.generation++
		if s.generation == 0 {
			s.generation = 1
		}
		em.free = append(em.free, id.Index())
		em.live--
		removed++
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0] // 清空切片
	return removed
}

// Len 返回存活实体数量（包括已标记但尚未清理的实体）
func (em *EntityManager[T]) Len() int {
	return em.live
}

// PendingDestroy 返回已标记待删除的实体数量
func (em *EntityManager[T]) PendingDestroy() int {
	return len(em.entitiesToDestroy)
}

// Each 按槽位顺序遍历所有存活实体
// 遍历过程中可以调用 DestroyEntity，但不能调用 CreateEntity
func (em *EntityManager[T]) Each(fn func(id EntityID, value *T)) {
	for i := range em.slots {
		s := &em.slots[i]
		if !s.alive {
			continue
		}
		fn(makeEntityID(uint32(i), s.generation), &s.value)
	}
}

// GetEntities 返回所有存活实体的ID
func (em *EntityManager[T]) GetEntities() []EntityID {
	result := make([]EntityID, 0, em.live)
	em.Each(func(id EntityID, _ *T) {
		result = append(result, id)
	})
	return result
}
