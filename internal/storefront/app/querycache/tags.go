// Package querycache реализует кэш запросов с инвалидацией по тегам.
//
// Запрос (Query) объявляет теги, которые он предоставляет, мутация (Mutation) -
// теги, которые она инвалидирует. После завершения мутации каждая активная запись,
// предоставляющая хотя бы один из тегов, перезапрашивается ровно один раз.
package querycache

// Tag - класс ресурсов сервера.
type Tag string

// Теги ресурсов витрины.
const (
	TagCategory Tag = "Category"
	TagProduct  Tag = "Product"
	TagCart     Tag = "Cart"
	TagUser     Tag = "User"
)

// Status - состояние асинхронной операции.
type Status string

// Состояния записи запроса или мутации.
const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Settled сообщает, завершена ли операция.
func (s Status) Settled() bool {
	return s == StatusSucceeded || s == StatusFailed
}
