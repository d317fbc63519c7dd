package clients

const USER_AGENT = "vidinsight/0.1 (comment analysis; +https://github.com/spacesedan/vidinsight)"
