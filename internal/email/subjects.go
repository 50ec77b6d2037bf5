package email

const subjectMeetingConfirmation = "Sua reunião com a WorkMarket está confirmada"
