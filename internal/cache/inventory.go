package cache

import (
	"fmt"
	"time"
)

// Key families. List keys embed the resolved limit and page index.
const (
	PostKeyPrefix       = "post:%d"
	postFamilyPrefix    = "post:"
	TopicKeyPrefix      = "topic:%d"
	TopicListPrefix     = "topics:list:"
	AuthorListPrefix    = "authors:list:"
	LatestUsersKey      = "users:latest"
	topicListKeyFormat  = TopicListPrefix + "%d:%d"
	authorListKeyFormat = AuthorListPrefix + "%d:%d"
)

const (
	PostTTL        = 30 * time.Minute
	TopicTTL       = 10 * time.Minute
	TopicListTTL   = 10 * time.Minute
	AuthorListTTL  = 5 * time.Minute
	LatestUsersTTL = time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func TopicKey(topicID uint) string {
	return fmt.Sprintf(TopicKeyPrefix, topicID)
}

func TopicListKey(limit, page int) string {
	return fmt.Sprintf(topicListKeyFormat, limit, page)
}

func AuthorListKey(limit, page int) string {
	return fmt.Sprintf(authorListKeyFormat, limit, page)
}
