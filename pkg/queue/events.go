package queue

import "github.com/ThreeDotsLabs/watermill/message"

func PublishFileStored(pub message.Publisher, payload FileStoredPayload, opts ...Option) error {
	return publish(pub, TopicFileStored, payload, opts...)
}

func PublishFileDeleted(pub message.Publisher, payload FileDeletedPayload, opts ...Option) error {
	return publish(pub, TopicFileDeleted, payload, opts...)
}

func PublishFileOrphaned(pub message.Publisher, payload FileOrphanedPayload, opts ...Option) error {
	return publish(pub, TopicFileOrphaned, payload, opts...)
}

func ParseFileStored(msg *message.Message) (Message[FileStoredPayload], error) {
	return ParseWatermillMessage[FileStoredPayload](TopicFileStored, msg)
}

func ParseFileDeleted(msg *message.Message) (Message[FileDeletedPayload], error) {
	return ParseWatermillMessage[FileDeletedPayload](TopicFileDeleted, msg)
}

func ParseFileOrphaned(msg *message.Message) (Message[FileOrphanedPayload], error) {
	return ParseWatermillMessage[FileOrphanedPayload](TopicFileOrphaned, msg)
}
