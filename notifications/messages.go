package notifications

import (
	"fmt"

	"github.com/linesmerrill/lost-found-api/models"
)

func postEvent(post *models.Post, actorID, typ, title, message string) Event {
	return Event{
		RecipientID: post.UserID,
		ActorID:     actorID,
		Title:       title,
		Message:     message,
		Type:        typ,
		RelatedID:   post.ID.Hex(),
	}
}

// PostApproved tells the owner their post is now public
func PostApproved(post *models.Post, actorID string) Event {
	return postEvent(post, actorID, models.NotificationPostApproved,
		"Bài đăng đã được duyệt",
		fmt.Sprintf("Bài đăng \"%s\" của bạn đã được duyệt.", post.Title))
}

// PostRejected tells the owner their post was refused
func PostRejected(post *models.Post, actorID string) Event {
	return postEvent(post, actorID, models.NotificationPostRejected,
		"Bài đăng bị từ chối",
		fmt.Sprintf("Bài đăng \"%s\" của bạn đã bị từ chối.", post.Title))
}

// ItemFound tells the owner the item of the post was found
func ItemFound(post *models.Post, actorID string) Event {
	return postEvent(post, actorID, models.NotificationItemFound,
		"Đồ vật đã được tìm thấy",
		fmt.Sprintf("Đồ vật trong bài đăng \"%s\" đã được tìm thấy.", post.Title))
}

// ItemNotFound tells the owner the post is searchable again
func ItemNotFound(post *models.Post, actorID string) Event {
	return postEvent(post, actorID, models.NotificationItemNotFound,
		"Chưa tìm thấy đồ vật",
		fmt.Sprintf("Đồ vật trong bài đăng \"%s\" vẫn chưa được tìm thấy.", post.Title))
}

// ReturnStatusChanged picks the notification for a return status update
func ReturnStatusChanged(post *models.Post, actorID string) Event {
	if post.ReturnStatus == models.ReturnStatusReturned {
		return postEvent(post, actorID, models.NotificationItemFound,
			"Đồ vật đã được gửi trả",
			fmt.Sprintf("Đồ vật trong bài đăng \"%s\" đã được gửi trả.", post.Title))
	}
	return ItemNotFound(post, actorID)
}

// PostBanned tells the owner their post was hidden by a moderator
func PostBanned(post *models.Post, actorID string) Event {
	reason := ""
	if post.BannedReason != nil {
		reason = *post.BannedReason
	}
	return postEvent(post, actorID, models.NotificationPostBanned,
		"Bài đăng bị khóa",
		fmt.Sprintf("Bài đăng \"%s\" của bạn đã bị khóa. Lý do: %s", post.Title, reason))
}

// PostUnbanned tells the owner their post is visible again
func PostUnbanned(post *models.Post, actorID string) Event {
	return postEvent(post, actorID, models.NotificationPostApproved,
		"Bài đăng đã được mở khóa",
		fmt.Sprintf("Bài đăng \"%s\" của bạn đã được mở khóa.", post.Title))
}

// PostLiked tells the owner someone liked their post
func PostLiked(post *models.Post, actorID, actorName string) Event {
	return postEvent(post, actorID, models.NotificationLike,
		"Lượt thích mới",
		fmt.Sprintf("%s đã thích bài đăng \"%s\" của bạn.", actorName, post.Title))
}

// PostCommented tells the owner someone commented on their post
func PostCommented(post *models.Post, actorID, actorName string) Event {
	return postEvent(post, actorID, models.NotificationComment,
		"Bình luận mới",
		fmt.Sprintf("%s đã bình luận về bài đăng \"%s\" của bạn.", actorName, post.Title))
}

// CommentReplied tells a comment author someone answered them
func CommentReplied(parent *models.Comment, actorID, actorName string) Event {
	return Event{
		RecipientID: parent.UserID,
		ActorID:     actorID,
		Title:       "Phản hồi mới",
		Message:     fmt.Sprintf("%s đã trả lời bình luận của bạn.", actorName),
		Type:        models.NotificationComment,
		RelatedID:   parent.PostID,
	}
}
