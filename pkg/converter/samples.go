package converter

// SampleTexts is a small corpus covering ASCII, CJK and 4-byte UTF-8
var SampleTexts = []string{
	"Hello",
	"The quick brown fox jumps over the lazy dog",
	"Some sample text for testing,but its length is not too long.",
	"これは日本語のテストです。",
	"短い",
	"日本国民は、正当に選挙された国会における代表者を通じて行動し、われらとわれらの子孫のために、諸国民との協和による成果と、わが国全土にわたつて自由のもたらす恵沢を確保し、政府の行為によつて再び戦争の惨禍が起ることのないやうにすることを決意し、ここに主権が国民に存することを宣言し、この憲法を確定する。",
	"Emoji test 👍🚀🎵",
}
