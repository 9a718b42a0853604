package assist

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("lsp-assist.assist")
