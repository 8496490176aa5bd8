package realtime

// Channel keys identify a broadcast subject. A connection may be registered
// under several keys at once, e.g. a post thread and its owner's personal
// stream.
const (
	postChannelPrefix  = "post:"
	imageChannelPrefix = "image:"
	userChannelPrefix  = "user:"
)

// PostChannel returns the channel key for a post's comment/update stream.
func PostChannel(postID string) string { return postChannelPrefix + postID }

// ImageChannel returns the channel key for an image's comment/like stream.
func ImageChannel(imageID string) string { return imageChannelPrefix + imageID }

// UserChannel returns the channel key for a user's personal notification stream.
func UserChannel(userID string) string { return userChannelPrefix + userID }
