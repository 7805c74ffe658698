// Package mocks holds mockgen output for the port interfaces.
package mocks

//go:generate mockgen -destination=project.go -package=mocks -mock_names=Repository=MockProjectRepository,OwnershipChecker=MockOwnershipChecker github.com/alanyang/project-chat/internal/port/project Repository,OwnershipChecker
//go:generate mockgen -destination=prompt.go -package=mocks -mock_names=Repository=MockPromptRepository github.com/alanyang/project-chat/internal/port/prompt Repository
//go:generate mockgen -destination=message.go -package=mocks -mock_names=Repository=MockMessageRepository github.com/alanyang/project-chat/internal/port/message Repository
//go:generate mockgen -destination=llm.go -package=mocks github.com/alanyang/project-chat/internal/port/llm Provider
//go:generate mockgen -destination=eventbus.go -package=mocks github.com/alanyang/project-chat/internal/port/eventbus EventBus
//go:generate mockgen -destination=locker.go -package=mocks github.com/alanyang/project-chat/internal/port/locker AdvisoryLocker
//go:generate mockgen -destination=idempotency.go -package=mocks -mock_names=Store=MockIdempotencyStore github.com/alanyang/project-chat/internal/port/idempotency Store
