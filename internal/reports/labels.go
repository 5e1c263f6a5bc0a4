package reports

// Tajik captions shared by the word and excel renderers.
const (
	titleStatistics    = "Омори дархостҳо"
	titleProtocol      = "ПРОТОКОЛ"
	workerTitlePrefix  = "Омори корбар: "
	sheetStatistics    = "Омор"
	sheetWorker        = "Омори корбар"
	labelPeriod        = "Давра: "
	labelGeneratedAt   = "Санаи тайёр кардан: "
	sectionSummary     = "Омори умумӣ"
	sectionTopics      = "Омор аз рӯи мавзӯъҳо"
	sectionUsers       = "Омори корбарон"
	sectionWorkerInfo  = "Маълумоти корбар"
	sectionWorkerStats = "Омори дархостҳо"
	sectionRequestList = "Рӯйхати дархостҳо"
	sectionComment     = "Шарҳ"
	sectionImage       = "Расм"
	sectionAttachment  = "Файли замима"
	sectionReply       = "Ҷавоби админ"

	labelTotal        = "Ҳамаи дархостҳо"
	labelNew          = "Нав"
	labelUnderReview  = "Дар тафтиш"
	labelCompleted    = "Иҷро шуд"
	labelRate         = "Фоизи иҷро"
	labelUsers        = "Корбарон"
	labelAdmins       = "Администраторҳо"
	labelTopic        = "Мавзӯъ"
	labelTopicTotal   = "Ҳамагӣ"
	labelPercent      = "Фоиз"
	labelUsername     = "Номи корбар"
	labelFullName     = "Номи пурра"
	labelRole         = "Нақш"
	labelRegistered   = "Санаи бақайдгирӣ"
	labelRegNumber    = "Рақами қайд"
	labelDate         = "Сана"
	labelComment      = "Шарҳ"
	labelStatus       = "Ҳолат"
	labelSubmitter    = "Корбар"
	labelCreatedAt    = "Санаи сохтан"
	labelCoordinates  = "Координатҳо"
	labelReadAt       = "Санаи хондан"
	labelDocNumber    = "Рақами ҳуҷҷат: "
	labelFileName     = "Номи файл: "
	labelRepliedAt    = "Санаи ҷавоб: "
	roleAdmin         = "Администратор"
	roleUser          = "Корбар"
	valueNone         = "Нест"
	valueUnread       = "Нахонда"
	valueNoComment    = "Шарҳ нест"
	valueNotAvailable = "Н/Д"
	valueUnknown      = "Номаълум"
	embedFailedPrefix = "Расмро илова кардан имконнопазир: "
	moreRowsFormat    = "... ва боз %d дархости дигар"
)

var (
	topicHeaders   = []string{labelTopic, labelTopicTotal, labelCompleted, labelUnderReview, labelPercent}
	requestHeaders = []string{labelRegNumber, labelTopic, labelDate, labelStatus, labelComment}
)
